package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in
	// the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnknownState is returned when a machine is built with a state the
	// entity never declared
	ErrUnknownState = errors.New("unknown state")

	// ErrGuardFailed is returned when every candidate transition's guard
	// rejects the trigger
	ErrGuardFailed = errors.New("guard condition failed")
)
