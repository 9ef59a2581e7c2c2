// errors.go: sentinel errors for the ring package.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import "errors"

var (
	// ErrMissingProcessor is returned by Build when no processor func was set.
	ErrMissingProcessor = errors.New("ring: processor function is required")

	// ErrInvalidCapacity is returned by Build when capacity is not a power of two.
	ErrInvalidCapacity = errors.New("ring: capacity must be a power of two greater than zero")

	// ErrInvalidBatchSize is returned by Build when batch size is <= 0 or exceeds capacity.
	ErrInvalidBatchSize = errors.New("ring: batch size must be between 1 and capacity")

	// ErrClosed is returned by Flush when the ring is closed while it waits
	// for room to place its barrier (Write reports a closed ring by
	// returning false).
	ErrClosed = errors.New("ring: closed")

	// ErrFull is returned by Flush when its timeout expires before the
	// barrier has been placed and processed.
	ErrFull = errors.New("ring: full")
)
