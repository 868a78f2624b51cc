package repl

import "github.com/ardnew/vibe/lang"

// Sentinel errors.
var (
	ErrOutOfBounds  = lang.NewError("index out of range")
	ErrEditDeclined = lang.NewError("decline edit")
	ErrCommand      = lang.NewError("unknown command")
)
