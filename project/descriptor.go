package project

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/vibe/lang"
)

// DescriptorExtension is the file extension of build-project descriptors.
const DescriptorExtension = ".csproj"

// Descriptor holds the build-project properties that shape generated code.
type Descriptor struct {
	Path          string `json:"path,omitempty"           yaml:"path,omitempty"`
	UseMaui       bool   `json:"use_maui"                 yaml:"use_maui"`
	RootNamespace string `json:"root_namespace,omitempty" yaml:"root_namespace,omitempty"`
	OutputType    string `json:"output_type,omitempty"    yaml:"output_type,omitempty"`
}

// Executable reports whether the descriptor builds an executable.
func (d Descriptor) Executable() bool {
	return strings.EqualFold(d.OutputType, "Exe")
}

// Platform returns the target-platform settings passed to the transpiler.
func (d Descriptor) Platform() lang.Platform {
	return lang.Platform{Maui: d.UseMaui, RootNamespace: d.RootNamespace}
}

// FindDescriptor returns the path of the first descriptor, in name order,
// found in dir or the nearest ancestor holding one. It returns an empty
// path and no error if no directory up to the file-system root holds one.
func FindDescriptor(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", ErrDescriptor.Wrap(err)
	}

	for {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+DescriptorExtension))
		if err != nil {
			return "", ErrDescriptor.Wrap(err)
		}

		if len(matches) > 0 {
			slices.Sort(matches)

			return matches[0], nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// ReadDescriptor reads the descriptor at path. Properties are taken from
// their first occurrence at any depth of the document.
func ReadDescriptor(path string) (Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return Descriptor{}, ErrDescriptor.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	d, err := decodeDescriptor(f)
	if err != nil {
		return Descriptor{}, ErrDescriptor.Wrap(err).With(slog.String("path", path))
	}

	d.Path = path

	return d, nil
}

func decodeDescriptor(r io.Reader) (Descriptor, error) {
	var (
		d    Descriptor
		seen = map[string]bool{}
	)

	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return d, nil
		}

		if err != nil {
			return Descriptor{}, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		name := start.Name.Local
		if seen[name] {
			continue
		}

		var field *string

		var useMaui string

		switch name {
		case "UseMaui":
			field = &useMaui
		case "RootNamespace":
			field = &d.RootNamespace
		case "OutputType":
			field = &d.OutputType
		default:
			continue
		}

		if err := dec.DecodeElement(field, &start); err != nil {
			return Descriptor{}, err
		}

		*field = strings.TrimSpace(*field)
		seen[name] = true

		if name == "UseMaui" {
			d.UseMaui = strings.EqualFold(useMaui, "true")
		}
	}
}

// LoadDescriptor finds and reads the descriptor governing dir. If none is
// found, the zero Descriptor is returned.
func LoadDescriptor(dir string) (Descriptor, error) {
	path, err := FindDescriptor(dir)
	if err != nil || path == "" {
		return Descriptor{}, err
	}

	return ReadDescriptor(path)
}
