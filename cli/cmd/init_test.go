package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func initContext(t *testing.T, cli any, confPath string, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var cli struct{}

			ctx := initContext(t, &cli, confPath)

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			if tt.wantErr != nil {
				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var doc map[string]any
			if err := yaml.Unmarshal(content, &doc); err != nil {
				t.Errorf("generated config is not valid YAML: %v", err)
			}

			if _, ok := doc[ConfigIdentifier]; !ok {
				t.Errorf("expected %q table, got %s", ConfigIdentifier, content)
			}
		})
	}
}

func TestInitFlagValues(t *testing.T) {
	t.Parallel()

	var cli struct {
		Name     string        `default:"demo"`
		Empty    string        ``
		Jobs     int           `default:"4"`
		Verbose  bool          ``
		Debounce time.Duration `default:"250ms"`
		Types    []string      ``
		PprofDir string        `default:"/tmp"`
	}

	confPath := filepath.Join(t.TempDir(), "config.yaml")
	ctx := initContext(t, &cli, confPath, "--types=Widget,Gadget")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatalf("Init.Run: %v", err)
	}

	content, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Config map[string]any `yaml:"config"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, content)
	}

	got := make(map[string]string, len(doc.Config))
	for k, v := range doc.Config {
		got[k] = fmt.Sprint(v)
	}

	want := map[string]string{
		"name":     "demo",
		"jobs":     "4",
		"verbose":  "false",
		"debounce": "250ms",
		"types":    "[Widget Gadget]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if strings.Contains(string(content), "pprof") {
		t.Errorf("expected profiling flags to be omitted, got:\n%s", content)
	}
}

func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	var cli struct{}

	ctx := initContext(t, &cli, "/nonexistent/directory/config.yaml")

	if err := (&Init{}).Run(ctx); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("expected ErrWriteConfig, got %v", err)
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	type level string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"empty_string", "", nil},
		{"string", "x", "x"},
		{"bool", true, true},
		{"int", 3, 3},
		{"empty_slice", []string{}, nil},
		{"slice", []string{"a"}, []string{"a"}},
		{"stringer", 2 * time.Second, "2s"},
		{"named", level("debug"), "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, configValue(tt.in)); diff != "" {
				t.Errorf("configValue(%v) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
