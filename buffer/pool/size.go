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

package pool

// SizeClass classifies a normalized allocation request.
type SizeClass uint8

const (
	ClassTiny SizeClass = iota
	ClassSmall
	ClassNormal
	ClassHuge
)

func (s SizeClass) String() string {
	switch s {
	case ClassTiny:
		return "tiny"
	case ClassSmall:
		return "small"
	case ClassNormal:
		return "normal"
	default:
		return "huge"
	}
}

const tinyStep = 16
const tinyMax = 496

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Normalize classifies requested and returns the class and the rounded
// size the allocator actually carves out, per the allocator's size-class
// rules: tiny rounds to a multiple of 16, small and normal round to the
// next power of two, huge passes through unchanged.
func Normalize(requested int) (SizeClass, int) {
	switch {
	case requested <= tinyMax:
		return ClassTiny, ((requested + tinyStep - 1) / tinyStep) * tinyStep
	case requested < PageSize:
		return ClassSmall, nextPow2(requested)
	case requested <= ChunkSize:
		return ClassNormal, nextPow2(requested)
	default:
		return ClassHuge, requested
	}
}
