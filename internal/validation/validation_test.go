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
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kaiseki/kaiseki/errors"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain with options", func() {
		s.Assert().True(New("display", FailFast()).failFast)
		s.Assert().False(New("display", AllErrors()).failFast)
		s.Assert().Equal("display", New("display").subject)
	})
}

func (s *validationTestSuite) TestValidate() {
	s.Run("with single validator", func() {
		err := New("display").AddValidator(NewEmptyStringValidator("name", " ")).Validate()
		s.Assert().ErrorIs(err, errors.ErrInvalidConfig)
		s.Assert().ErrorContains(err, "display: the [name] is required")
	})
	s.Run("with FailFast option", func() {
		violations := New("oscillator", FailFast()).
			AddValidator(NewPositiveValidator("frequency", 0.0)).
			AddAssertion(false, "this is false").
			Violations()
		s.Require().Len(violations, 1)
		s.Assert().EqualError(violations[0], "oscillator: the [frequency] must be positive")
	})
	s.Run("with AllErrors option", func() {
		chain := New("oscillator", AllErrors()).
			AddValidator(NewPositiveValidator("frequency", 0.0)).
			AddAssertion(false, "this is false")
		violations := chain.Violations()
		s.Require().Len(violations, 2)
		s.Assert().EqualError(violations[1], "oscillator: this is false")

		err := chain.Validate()
		s.Assert().ErrorIs(err, errors.ErrInvalidConfig)
		s.Assert().ErrorContains(err, "oscillator: the [frequency] must be positive; oscillator: this is false")
	})
	s.Run("with repeated evaluation", func() {
		chain := New("machine config").AddAssertion(false, "this is false")
		s.Assert().Len(chain.Violations(), 1)
		s.Assert().Len(chain.Violations(), 1)
	})
	s.Run("with no violation", func() {
		chain := New("machine config").
			AddValidator(NewRangeValidator("width", 64, 1, 256)).
			AddValidator(NewPositiveValidator("budget", uint64(1))).
			AddAssertion(true, "")
		s.Assert().NoError(chain.Validate())
		s.Assert().Empty(chain.Violations())
	})
}

func (s *validationTestSuite) TestRangeValidator() {
	s.Assert().NoError(NewRangeValidator("multiplier", 1.0, 0.01, 100.0).Validate())
	s.Assert().EqualError(NewRangeValidator("width", 300, 1, 256).Validate(),
		"the [width] must be within [1, 256], got 300")
	s.Assert().Error(NewRangeValidator("width", 0, 1, 256).Validate())
}

func (s *validationTestSuite) TestBooleanValidator() {
	s.Assert().NoError(NewBooleanValidator(true, "error message").Validate())
	s.Assert().EqualError(NewBooleanValidator(false, "error message").Validate(), "error message")
}
