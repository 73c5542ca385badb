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

package validation

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/kaiseki/kaiseki/errors"
)

// Validator checks one setting
type Validator interface {
	Validate() error
}

// Chain checks the settings of one component. Every violation it reports is
// prefixed with the component name and wrapped with errors.ErrInvalidConfig.
type Chain struct {
	subject    string
	failFast   bool
	validators []Validator
}

// ChainOption configures a validation chain at creation time.
type ChainOption func(*Chain)

// New creates a validation chain for the named component
func New(subject string, opts ...ChainOption) *Chain {
	chain := &Chain{
		subject:    subject,
		validators: make([]Validator, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// FailFast stops the chain on the first violation.
func FailFast() ChainOption {
	return func(c *Chain) { c.failFast = true }
}

// AllErrors makes the chain report every violation.
func AllErrors() ChainOption {
	return func(c *Chain) { c.failFast = false }
}

// AddValidator adds validator to the validation chain.
func (c *Chain) AddValidator(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// AddAssertion fails the chain with message when isTrue is false
func (c *Chain) AddAssertion(isTrue bool, message string) *Chain {
	return c.AddValidator(NewBooleanValidator(isTrue, message))
}

// Violations runs the validators and returns what they reported, in order.
// The chain can be evaluated any number of times.
func (c *Chain) Violations() []error {
	var violations []error
	for _, v := range c.validators {
		if err := v.Validate(); err != nil {
			violations = append(violations, fmt.Errorf("%s: %w", c.subject, err))
			if c.failFast {
				break
			}
		}
	}
	return violations
}

// Validate returns nil when the component is correctly configured
func (c *Chain) Validate() error {
	violations := c.Violations()
	if len(violations) == 0 {
		return nil
	}
	return errors.NewErrInvalidConfig(multierr.Combine(violations...))
}
