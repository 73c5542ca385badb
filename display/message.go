// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package display

import "fmt"

// Message is exchanged on a display message bus
type Message interface {
	fmt.Stringer
	displayMessage()
}

// Clear blanks the framebuffer
type Clear struct{}

// ClearDone acknowledges Clear
type ClearDone struct{}

// DrawSprite XOR-draws Length sprite rows read from the memory bus at
// Address. Each byte is one row of eight pixels, most significant bit first,
// with its top-left corner at (X, Y). Pixels past an edge wrap around.
type DrawSprite struct {
	Address uint64
	Length  uint64
	X       uint64
	Y       uint64
}

// DrawSpriteResult acknowledges DrawSprite. Collision is set when a lit
// pixel was turned off.
type DrawSpriteResult struct {
	Collision bool
}

func (Clear) displayMessage()            {}
func (ClearDone) displayMessage()        {}
func (DrawSprite) displayMessage()       {}
func (DrawSpriteResult) displayMessage() {}

func (Clear) String() string     { return "Clear" }
func (ClearDone) String() string { return "ClearDone" }

func (m DrawSprite) String() string {
	return fmt.Sprintf("DrawSprite{address: 0x%04X, length: %d, x: %d, y: %d}", m.Address, m.Length, m.X, m.Y)
}

func (m DrawSpriteResult) String() string {
	return fmt.Sprintf("DrawSpriteResult{collision: %t}", m.Collision)
}
