package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles render through a
// renderer bound to the handler's output, so they degrade to plain text
// when the output is not a terminal.
type palette struct {
	key      lipgloss.Style
	text     lipgloss.Style
	number   lipgloss.Style
	truthy   lipgloss.Style
	falsy    lipgloss.Style
	duration lipgloss.Style
	stamp    lipgloss.Style
	trace    lipgloss.Style
	debug    lipgloss.Style
	info     lipgloss.Style
	warn     lipgloss.Style
	err      lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(c)).
			TabWidth(lipgloss.NoTabConversion)
	}

	return palette{
		key:      fg("8"),
		text:     fg("6"),
		number:   fg("3"),
		truthy:   fg("2"),
		falsy:    fg("1"),
		duration: fg("5"),
		stamp:    fg("4"),
		trace:    fg("8"),
		debug:    fg("4"),
		info:     fg("2").Bold(true),
		warn:     fg("3").Bold(true),
		err:      fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records, one line of key=value pairs for
// [FormatText] or an indented object for [FormatJSON].
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	stamp  FormatTime
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string // group qualifier for attributes added later
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	stamp FormatTime,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		stamp:  stamp,
		style:  newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() && h.stamp != nil {
		if s := h.stamp(r.Time); s != "" {
			fields = append(fields, slog.String(slog.TimeKey, s))
		}
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	fields = append(fields, h.qualify(own)...)

	buf := new(bytes.Buffer)

	if h.format == FormatJSON {
		h.writeObject(buf, fields)
	} else {
		h.writeLine(buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []slog.Attr) {
	for i, a := range flatten("", fields) {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(a.Value, false))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range flatten("", fields) {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.value(a.Value, true))
	}

	buf.WriteString("\n}\n")
}

// value renders v, quoting strings when quote is set.
func (h *prettyHandler) value(v slog.Value, quote bool) string {
	str := func(s string) string {
		if quote || strings.ContainsAny(s, "\n\r") {
			s = strconv.Quote(s)
		}

		return h.style.text.Render(s)
	}

	switch v.Kind() {
	case slog.KindString:
		return str(v.String())
	case slog.KindInt64:
		return h.style.number.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.style.number.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.style.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.style.truthy.Render("true")
		}

		return h.style.falsy.Render("false")
	case slog.KindDuration:
		return h.style.duration.Render(maybeQuote(v.Duration().String(), quote))
	case slog.KindTime:
		return h.style.stamp.Render(maybeQuote(v.Time().Format(time.RFC3339), quote))
	}

	switch a := v.Any().(type) {
	case slog.Level:
		return h.style.level(a).Render(maybeQuote(strings.ToUpper(Level(a).String()), quote))
	case error:
		return h.style.falsy.Render(maybeQuote(a.Error(), quote))
	case fmt.Stringer:
		return str(a.String())
	case nil:
		return h.style.key.Render("null")
	default:
		if quote {
			if data, err := json.Marshal(a); err == nil {
				return h.style.text.Render(string(data))
			}
		}

		return str(fmt.Sprint(a))
	}
}

func maybeQuote(s string, quote bool) string {
	if quote {
		return strconv.Quote(s)
	}

	return s
}

// flatten resolves attribute values and expands groups into dotted keys.
func flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Equal(slog.Attr{}) {
			continue
		}

		if a.Value.Kind() == slog.KindGroup {
			key := prefix
			if a.Key != "" {
				key += a.Key + "."
			}

			out = append(out, flatten(key, a.Value.Group())...)

			continue
		}

		a.Key = prefix + a.Key
		out = append(out, a)
	}

	return out
}
