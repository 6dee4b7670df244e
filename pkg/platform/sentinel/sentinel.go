package sentinel

import "errors"

// Sentinel errors for storage facts. Listing repositories and the party
// directory return these (optionally wrapped) so the lifecycle service can
// translate them into coded domain errors.
//
//   - ErrNotFound: record does not exist
//   - ErrAlreadyUsed: create-if-absent found an existing record
//   - ErrConflict: conditional write lost against a newer version
//   - ErrUnavailable: backing store unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
