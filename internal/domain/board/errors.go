package board

import "errors"

var (
	// ErrListNotFound indicates the list doesn't exist on the board.
	ErrListNotFound = errors.New("list not found")
	// ErrCardNotFound indicates the card doesn't exist on the board.
	ErrCardNotFound = errors.New("card not found")
	// ErrInvalidInput indicates missing identifiers for a board operation.
	ErrInvalidInput = errors.New("invalid board input")
)
