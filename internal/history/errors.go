package history

import "github.com/masonlet/starlet-setup/internal/foundation/errors"

var (
	// ErrRunNotFound indicates no run with the requested ID was recorded.
	ErrRunNotFound = errors.NewError(errors.CategoryHistory, "run not found").Build()
)
