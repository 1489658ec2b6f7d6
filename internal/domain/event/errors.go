package event

import "errors"

// ErrGuardFieldNotFound indicates the required field of the move guard is
// not defined on the board.
var ErrGuardFieldNotFound = errors.New("guard field not found")
