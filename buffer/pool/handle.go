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

// Handle identifies a specific page or subpage slot returned by an
// Arena allocation. The low 32 bits encode the binary-tree node index;
// the high 32 bits encode the subpage slot bitmap index for small/tiny
// allocations, or zero for normal/huge allocations.
type Handle uint64

// encodeHandle stores slot+1 in the high bits so that zero unambiguously
// means "no subpage slot" (normal/huge allocations).
func encodeHandle(nodeID int, slot int) Handle {
	return Handle(uint32(nodeID)) | Handle(uint32(slot+1))<<32
}

func (h Handle) nodeID() int {
	return int(uint32(h))
}

func (h Handle) slot() int {
	return int(uint32(h>>32)) - 1
}

// IsSubpage reports whether this handle addresses a subpage slot rather
// than a whole page/normal block.
func (h Handle) IsSubpage() bool {
	return uint32(h>>32) != 0
}
