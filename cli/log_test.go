package cli

import (
	"testing"

	"github.com/ardnew/vibe/log"
)

func TestLogConfig_Scan(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		pretty bool
		caller bool
	}{
		{
			name:   "assigned",
			args:   []string{"build", "--log-level=debug", "--log-format=json"},
			level:  "debug",
			format: "json",
			pretty: true,
		},
		{
			name:   "separate_values",
			args:   []string{"--log-level", "warn", "gen", "--log-format", "text", "-"},
			level:  "warn",
			format: "text",
			pretty: true,
		},
		{
			name:   "booleans",
			args:   []string{"--no-log-pretty", "--log-caller"},
			caller: true,
		},
		{
			name:   "boolean_values",
			args:   []string{"--log-pretty=false", "--no-log-caller=false"},
			caller: true,
		},
		{
			name:   "bad_boolean_ignored",
			args:   []string{"--log-pretty=maybe"},
			pretty: true,
		},
		{
			name:   "stops_at_terminator",
			args:   []string{"--", "--log-level=error"},
			pretty: true,
		},
		{
			name:   "value_not_consumed_from_flag",
			args:   []string{"--log-level", "--force"},
			pretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.level || f.Format != tt.format {
				t.Errorf("expected level %q and format %q, got %q and %q",
					tt.level, tt.format, f.Level, f.Format)
			}

			if f.Pretty != tt.pretty || f.Caller != tt.caller {
				t.Errorf("expected pretty=%v caller=%v, got pretty=%v caller=%v",
					tt.pretty, tt.caller, f.Pretty, f.Caller)
			}
		})
	}
}

func TestLogConfig_Vars(t *testing.T) {
	var f logConfig

	vars := f.vars()

	if vars["logLevel"] != "info" || vars["logFormat"] != "text" {
		t.Errorf("unexpected defaults: %v", vars)
	}

	if vars["logLevels"] != "trace,debug,info,warn,error" {
		t.Errorf("unexpected levels: %q", vars["logLevels"])
	}
}
