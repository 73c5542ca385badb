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

package errorschain

import "go.uber.org/multierr"

// Chain collects errors in insertion order.
// Functions added with AddErrorFn are evaluated lazily by Error.
type Chain struct {
	returnFirst bool
	fns         []func() error
}

// ChainOption configures an error chain at creation time.
type ChainOption func(*Chain)

// New creates a new error chain
func New(opts ...ChainOption) *Chain {
	chain := &Chain{
		fns: make([]func() error, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// AddError add an error to the chain
func (c *Chain) AddError(err error) *Chain {
	c.fns = append(c.fns, func() error { return err })
	return c
}

// AddErrorFn adds a function whose error is collected when the chain is evaluated.
// With ReturnFirst, functions after the first failure are not called.
func (c *Chain) AddErrorFn(fn func() error) *Chain {
	c.fns = append(c.fns, fn)
	return c
}

// Error evaluates the chain and returns the combined error
func (c *Chain) Error() error {
	var err error
	for _, fn := range c.fns {
		if v := fn(); v != nil {
			if c.returnFirst {
				return v
			}
			err = multierr.Append(err, v)
		}
	}
	return err
}

// ReturnFirst stops the evaluation on the first error.
func ReturnFirst() ChainOption {
	return func(c *Chain) { c.returnFirst = true }
}

// ReturnAll evaluates every entry and combines the errors.
func ReturnAll() ChainOption {
	return func(c *Chain) { c.returnFirst = false }
}
