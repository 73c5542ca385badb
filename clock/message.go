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

package clock

import "fmt"

// Message is a message of the clock protocol.
// The set is closed: only CycleBatchStart and CycleBatchEnd implement it.
type Message interface {
	fmt.Stringer
	clockMessage()
}

// CycleBatchStart grants a driven unit CycleBudget cycles starting at StartCycle
type CycleBatchStart struct {
	StartCycle  uint64
	CycleBudget uint64
}

// CycleBatchEnd reports the cycles a driven unit spent on the batch started at StartCycle
type CycleBatchEnd struct {
	StartCycle  uint64
	CyclesSpent uint64
}

func (CycleBatchStart) clockMessage() {}
func (CycleBatchEnd) clockMessage()   {}

func (m CycleBatchStart) String() string {
	return fmt.Sprintf("CycleBatchStart{start=%d budget=%d}", m.StartCycle, m.CycleBudget)
}

func (m CycleBatchEnd) String() string {
	return fmt.Sprintf("CycleBatchEnd{start=%d spent=%d}", m.StartCycle, m.CyclesSpent)
}
