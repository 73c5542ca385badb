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

package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaiseki/kaiseki/component"
)

var (
	// ErrNoComponentMapped is returned when no mapping on an addressable bus contains the address.
	ErrNoComponentMapped = errors.New("no component mapped at address")

	// ErrMappingConflict is returned when a new mapping overlaps an existing one.
	ErrMappingConflict = errors.New("address range mapping conflict")

	// ErrInvalidRange is returned when a mapping end address precedes its start address.
	ErrInvalidRange = errors.New("invalid address range")

	// ErrComponentReadFailed is returned when a mapped component fails to serve a read.
	ErrComponentReadFailed = errors.New("component read failed")

	// ErrComponentWriteFailed is returned when a mapped component fails to serve a write.
	ErrComponentWriteFailed = errors.New("component write failed")

	// ErrOutOfRange is returned by storage components when an access crosses their boundary.
	ErrOutOfRange = errors.New("access out of range")

	// ErrReadOnly is returned when writing to a read-only component.
	ErrReadOnly = errors.New("component is read-only")

	// ErrDisconnected is returned when the peer of a channel, a mailbox executor or a
	// reply slot has gone away.
	ErrDisconnected = errors.New("disconnected")

	// ErrMailboxFull is returned when a bounded mailbox has no room left.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrNoReceiversForSender is returned when a sender has no connected receivers.
	ErrNoReceiversForSender = errors.New("no receivers connected for sender")

	// ErrNoSendersToReceiver is returned when a receiver has no connected senders.
	ErrNoSendersToReceiver = errors.New("no senders connected for receiver")

	// ErrNoMessagesAvailable is returned by non-suspending receives when nothing is queued.
	ErrNoMessagesAvailable = errors.New("no messages available")

	// ErrComponentRemoved is returned when connecting a component that was removed from the bus.
	ErrComponentRemoved = errors.New("component was removed from the bus")

	// ErrReplyCancelled is returned when replying to a caller that abandoned the wait.
	ErrReplyCancelled = errors.New("reply cancelled")

	// ErrReplyAlreadySent is returned when a reply slot is used more than once.
	ErrReplyAlreadySent = errors.New("reply already sent")

	// ErrNoReplyExpected is returned when replying to a message that carries no reply slot.
	ErrNoReplyExpected = errors.New("message does not expect a reply")

	// ErrStartCycleMismatch is returned when a batch completion does not match its request.
	ErrStartCycleMismatch = errors.New("start cycle mismatch")

	// ErrUnexpectedMessage is returned when a protocol peer replies with the wrong message kind.
	ErrUnexpectedMessage = errors.New("unexpected message")

	// ErrAlreadyRunning is returned when starting a loop that is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MappingConflictError describes a rejected mapping
type MappingConflictError struct {
	New      component.ID
	Existing []component.ID
	Start    uint64
	End      uint64
}

// enforce compilation error
var _ error = (*MappingConflictError)(nil)

// Error implements the standard error interface
func (e *MappingConflictError) Error() string {
	owners := make([]string, len(e.Existing))
	for i, id := range e.Existing {
		owners[i] = id.String()
	}
	return fmt.Sprintf("cannot map %s at 0x%04X-0x%04X: overlaps %s: %v",
		e.New, e.Start, e.End, strings.Join(owners, ", "), ErrMappingConflict)
}

func (e *MappingConflictError) Unwrap() error {
	return ErrMappingConflict
}

// NoComponentMappedError reports an addressing miss
type NoComponentMappedError struct {
	Address uint64
	// Requester is the component that issued the access, zero when unknown
	Requester component.ID
}

// enforce compilation error
var _ error = (*NoComponentMappedError)(nil)

// Error implements the standard error interface
func (e *NoComponentMappedError) Error() string {
	if !e.Requester.IsZero() {
		return fmt.Sprintf("0x%04X requested by %s: %v", e.Address, e.Requester, ErrNoComponentMapped)
	}
	return fmt.Sprintf("0x%04X: %v", e.Address, ErrNoComponentMapped)
}

func (e *NoComponentMappedError) Unwrap() error {
	return ErrNoComponentMapped
}

// AccessOp names the kind of delegated access
type AccessOp int

const (
	ReadOp AccessOp = iota
	WriteOp
)

// String returns the access kind
func (op AccessOp) String() string {
	if op == WriteOp {
		return "write"
	}
	return "read"
}

// ComponentAccessError wraps the failure of a mapped component with the
// owner identity and the attempted access.
type ComponentAccessError struct {
	Op        AccessOp
	Component component.ID
	Address   uint64
	Length    uint64
	Err       error
}

// enforce compilation error
var _ error = (*ComponentAccessError)(nil)

// Error implements the standard error interface
func (e *ComponentAccessError) Error() string {
	return fmt.Sprintf("%s %d byte(s) at 0x%04X from %s: %v", e.Op, e.Length, e.Address, e.Component, e.Err)
}

// Unwrap exposes both the matching sentinel and the delegate's error
func (e *ComponentAccessError) Unwrap() []error {
	if e.Op == WriteOp {
		return []error{ErrComponentWriteFailed, e.Err}
	}
	return []error{ErrComponentReadFailed, e.Err}
}

// DisconnectedError reports a channel whose peer went away
type DisconnectedError struct {
	From component.ID
	To   component.ID
}

// enforce compilation error
var _ error = (*DisconnectedError)(nil)

// Error implements the standard error interface
func (e *DisconnectedError) Error() string {
	return fmt.Sprintf("sender %s is disconnected from receiver %s", e.From, e.To)
}

func (e *DisconnectedError) Unwrap() error {
	return ErrDisconnected
}

// MessagingError attaches the component ID to the messaging sentinels
// ErrNoReceiversForSender, ErrNoSendersToReceiver and ErrNoMessagesAvailable.
type MessagingError struct {
	Component component.ID
	Err       error
}

// enforce compilation error
var _ error = (*MessagingError)(nil)

// Error implements the standard error interface
func (e *MessagingError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Component)
}

func (e *MessagingError) Unwrap() error {
	return e.Err
}

// NewErrNoReceiversForSender formats an ErrNoReceiversForSender for the given sender
func NewErrNoReceiversForSender(sender component.ID) error {
	return &MessagingError{Component: sender, Err: ErrNoReceiversForSender}
}

// NewErrNoSendersToReceiver formats an ErrNoSendersToReceiver for the given receiver
func NewErrNoSendersToReceiver(receiver component.ID) error {
	return &MessagingError{Component: receiver, Err: ErrNoSendersToReceiver}
}

// NewErrNoMessagesAvailable formats an ErrNoMessagesAvailable for the given receiver
func NewErrNoMessagesAvailable(receiver component.ID) error {
	return &MessagingError{Component: receiver, Err: ErrNoMessagesAvailable}
}

// NewErrComponentRemoved formats an ErrComponentRemoved for the given component
func NewErrComponentRemoved(id component.ID) error {
	return fmt.Errorf("(component=%s) %w", id, ErrComponentRemoved)
}

// StartCycleMismatchError is the fatal protocol violation raised by the
// oscillator when a batch completion does not echo its request.
type StartCycleMismatchError struct {
	Expected uint64
	Actual   uint64
}

// enforce compilation error
var _ error = (*StartCycleMismatchError)(nil)

// Error implements the standard error interface
func (e *StartCycleMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %d, got %d", ErrStartCycleMismatch, e.Expected, e.Actual)
}

func (e *StartCycleMismatchError) Unwrap() error {
	return ErrStartCycleMismatch
}

// NewErrUnexpectedMessage formats an ErrUnexpectedMessage with the received message
func NewErrUnexpectedMessage(message any) error {
	return fmt.Errorf("(message=%T) %w", message, ErrUnexpectedMessage)
}

// NewErrInvalidConfig wraps a validation failure with ErrInvalidConfig
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
