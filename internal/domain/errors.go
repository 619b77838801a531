package domain

import "errors"

var (
	// ErrProjectCompleted and ErrProjectCancelled guard the terminal project
	// states: neither allows any further transition.
	ErrProjectCompleted = errors.New("project is already completed")
	ErrProjectCancelled = errors.New("project is already cancelled")

	// ErrNoProfit is returned when there is no positive profit to distribute.
	ErrNoProfit = errors.New("no profit to distribute")

	// ErrForbidden is returned when the actor's role lacks permission.
	ErrForbidden = errors.New("forbidden")
)
