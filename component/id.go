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

package component

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a simulated unit. It pairs a human-readable label with a
// globally unique token so that two units sharing a label never collide.
//
// ID is comparable and is meant to be used as a map key.
type ID struct {
	label string
	token uuid.UUID
}

// NewID creates a new ID with the given label and a fresh unique token.
func NewID(label string) ID {
	return ID{
		label: label,
		token: uuid.New(),
	}
}

// Label returns the human-readable part of the identifier
func (id ID) Label() string {
	return id.label
}

// Token returns the unique part of the identifier
func (id ID) Token() uuid.UUID {
	return id.token
}

// IsZero reports whether the identifier was never assigned
func (id ID) IsZero() bool {
	return id.token == uuid.Nil
}

// String returns the label followed by a short form of the token.
func (id ID) String() string {
	if id.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s[%s]", id.label, id.token.String()[:8])
}
