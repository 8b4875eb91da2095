/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package refcount_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/nexio/refcount"
)

func TestRefCount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "refcount Suite")
}

var _ = Describe("Counter", func() {
	It("starts at one and deallocates at zero", func() {
		var freed bool
		c := refcount.NewCounter(func() { freed = true })
		Expect(c.RefCnt()).To(Equal(int32(1)))

		ok, err := c.Release()
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(freed).To(BeTrue())
	})

	It("supports retain then matching releases", func() {
		n := 0
		c := refcount.NewCounter(func() { n++ })

		_, err := c.Retain()
		Expect(err).To(BeNil())
		Expect(c.RefCnt()).To(Equal(int32(2)))

		ok, err := c.Release()
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())

		ok, err = c.Release()
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(1))
	})

	It("fails on release past zero", func() {
		c := refcount.NewCounter(nil)
		_, _ = c.Release()

		_, err := c.Release()
		Expect(err).ToNot(BeNil())
	})

	It("fails retain on an already-released counter", func() {
		c := refcount.NewCounter(nil)
		_, _ = c.Release()

		_, err := c.Retain()
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("Detector", func() {
	It("reports disabled level without sampling", func() {
		called := false
		d := refcount.NewDetector(refcount.LeakDisabled, func(kind string, hints []string) {
			called = true
		})
		defer d.Close()

		c := refcount.NewCounterTracked(func() {}, d, "buffer")
		_, _ = c.Release()
		Expect(called).To(BeFalse())
	})
})
