package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand] for the edit-transpile-retry
// loop. It writes the session script to a temp file, opens the user's editor,
// and transpiles the result. On error the user is prompted to re-edit;
// declining exits the program.
type editSourceCommand struct {
	session *Session
	ctxFunc func() context.Context
	logger  log.Logger
	edited  bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. The session script is replaced only when the
// edited text transpiles. If the user declines to re-edit, it returns
// [ErrEditDeclined].
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()
	content := c.session.Source()

	f, err := os.CreateTemp(os.TempDir(), "vibe-repl-*"+lang.ScriptExtension)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		// An emptied file cancels the edit.
		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		prev := c.session.Source()
		c.session.SetSource(string(data))

		_, unitErr := c.session.Unit(ctx)
		c.logger.TraceContext(
			ctx,
			"editor transpile attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", unitErr == nil),
		)

		if unitErr == nil {
			c.edited = true

			return nil
		}

		c.session.SetSource(prev)

		fmt.Fprintf(c.stderr, "\nTranspile error: %s\n", unitErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
