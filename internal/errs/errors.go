// Package errs holds the sentinel errors shared across packages. Packages
// return richer typed errors that match these through errors.Is.
package errs

import "errors"

var (
	// ErrInvalidArgument indicates a caller asked for something unsupported.
	ErrInvalidArgument = errors.New("analytic: invalid argument")
	// ErrConfiguration indicates account or currency metadata is missing or inconsistent.
	ErrConfiguration = errors.New("analytic: configuration error")
	// ErrCycle indicates the parent relation is not a forest.
	ErrCycle = errors.New("analytic: recursive accounts")
	// ErrSelectionConflict indicates two selected accounts share a root.
	ErrSelectionConflict = errors.New("analytic: many accounts with the same root")
	// ErrMissingMandatoryRoot indicates a mandatory root is absent from a selection.
	ErrMissingMandatoryRoot = errors.New("analytic: missing mandatory root account")
)
