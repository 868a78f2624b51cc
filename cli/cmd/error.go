package cmd

import "github.com/ardnew/vibe/lang"

// Sentinel errors.
var (
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrJSONMarshal = lang.NewError("marshal JSON")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrOracle      = lang.NewError("compile type oracle")
	ErrBuild       = lang.NewError("build project")
	ErrSource      = lang.NewError("open source")
)
