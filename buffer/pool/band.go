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

// band keys an arena's six usage-percentage chunk lists. Bands are
// non-overlapping here; the source's overlapping hysteresis ranges are
// collapsed to straight cutoffs.
type band uint8

const (
	bandQInit band = iota
	bandQ000
	bandQ025
	bandQ050
	bandQ075
	bandQ100
)

func (b band) String() string {
	switch b {
	case bandQInit:
		return "qInit"
	case bandQ000:
		return "q000"
	case bandQ025:
		return "q025"
	case bandQ050:
		return "q050"
	case bandQ075:
		return "q075"
	default:
		return "q100"
	}
}

// bandFor classifies a chunk's current usage percentage into its band.
func bandFor(usagePercent int) band {
	switch {
	case usagePercent == 0:
		return bandQInit
	case usagePercent < 25:
		return bandQ000
	case usagePercent < 50:
		return bandQ025
	case usagePercent < 75:
		return bandQ050
	case usagePercent < 100:
		return bandQ075
	default:
		return bandQ100
	}
}

// allocationOrder is the order in which an arena probes its band lists
// for a normal-size allocation.
var allocationOrder = [...]band{bandQ050, bandQ025, bandQ000, bandQInit, bandQ075}
