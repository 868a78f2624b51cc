package project

import "github.com/ardnew/vibe/lang"

// Predefined errors (sentinel values).
var (
	ErrManifest   = lang.NewError("invalid package manifest")
	ErrDescriptor = lang.NewError("invalid project descriptor")
	ErrDiscover   = lang.NewError("script discovery failed")
	ErrReadScript = lang.NewError("failed to read script")
	ErrWrite      = lang.NewError("failed to write generated file")
	ErrCache      = lang.NewError("invalid cache index")
	ErrWatch      = lang.NewError("file watcher failed")
	ErrClean      = lang.NewError("failed to clean output directory")
)

// ErrClassConflict is returned for a script whose class name is already
// taken by another script of the same project.
var ErrClassConflict = lang.NewError("class name conflict")
