package presenter

import (
	"errors"
	"fmt"
	"strconv"
)

// ConfigurationError reports a missing or unsupported target or an invalid
// chain description. No native resource has been created when it is
// returned from Create.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return "presenter: configuration: " + e.Reason + ": " + e.Err.Error()
	}
	return "presenter: configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErr(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// NativeCallError wraps a failed platform or driver call.
type NativeCallError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *NativeCallError) Error() string {
	return "presenter: " + e.Op + " failed (0x" + strconv.FormatUint(uint64(e.Code), 16) + "): " + e.Err.Error()
}

func (e *NativeCallError) Unwrap() error { return e.Err }

// DeviceLostError is returned by Present when the driver reset or removed
// the device. The presenter is released and cannot be used again.
type DeviceLostError struct {
	Err error
}

func (e *DeviceLostError) Error() string {
	return "presenter: device lost: " + e.Err.Error()
}

func (e *DeviceLostError) Unwrap() error { return e.Err }

// UnrecoverableStateError is returned on any use of a presenter, or of a
// backbuffer, after a failed resize left no live backbuffer. The presenter
// must be recreated.
type UnrecoverableStateError struct {
	Op    string
	Cause error
}

func (e *UnrecoverableStateError) Error() string {
	if e.Cause == nil {
		return "presenter: " + e.Op + ": unrecoverable state"
	}
	return "presenter: " + e.Op + ": unrecoverable state: " + e.Cause.Error()
}

func (e *UnrecoverableStateError) Unwrap() error { return e.Cause }

var (
	// ErrReleased is the cause reported after Release.
	ErrReleased = errors.New("presenter released")
	// ErrBackBufferReleased is the cause reported when a BackBuffer is used
	// after the presenter replaced or released it.
	ErrBackBufferReleased = errors.New("backbuffer released")
	// ErrCaptureUnsupported is returned by Snapshot when the native chain
	// cannot be read back.
	ErrCaptureUnsupported = errors.New("presenter: chain does not support readback")
)

// nativeErr wraps err as a NativeCallError unless it already carries one of
// the presenter's error kinds.
func nativeErr(op string, err error) error {
	var (
		ce *ConfigurationError
		ne *NativeCallError
	)
	if errors.As(err, &ce) || errors.As(err, &ne) {
		return err
	}
	var coded interface{ Code() uint32 }
	var code uint32
	if errors.As(err, &coded) {
		code = coded.Code()
	}
	return &NativeCallError{Op: op, Code: code, Err: err}
}

// deviceLost reports whether err signals a reset or removed device.
func deviceLost(err error) bool {
	var lost interface{ DeviceLost() bool }
	return errors.As(err, &lost) && lost.DeviceLost()
}
