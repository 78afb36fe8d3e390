// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when a command input is rejected.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when a seat request cannot move to
	// the requested status.
	ErrInvalidTransition = errors.New("invalid status transition")
)
