package core

import (
	"errors"
)

var (
	// ErrInitialization is returned when the device, swapchain or any setup-time object could not be created. Fatal.
	ErrInitialization = errors.New("renderer initialization failed")
	// ErrResourceLoad is returned when a mesh or texture cannot be decoded or uploaded. Recoverable.
	ErrResourceLoad = errors.New("resource load failed")
	// ErrResourceNotRegistered is returned when a handle does not belong to the resource pool. Recoverable.
	ErrResourceNotRegistered = errors.New("resource not registered")
	// ErrSwapchainStale signals an out-of-date swapchain. The frame is skipped and the swapchain recreated.
	ErrSwapchainStale = errors.New("swapchain out of date")
	// ErrSynchronizationTimeout is returned when a fence wait exceeds its timeout. Fatal.
	ErrSynchronizationTimeout = errors.New("synchronization timeout")
	ErrUnknown                = errors.New("unknown")
)

// IsFatal reports whether err must abort the render loop.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsRecoverable(err)
}

// IsRecoverable reports whether the caller may carry on after err.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrResourceLoad) ||
		errors.Is(err, ErrResourceNotRegistered) ||
		errors.Is(err, ErrSwapchainStale)
}
