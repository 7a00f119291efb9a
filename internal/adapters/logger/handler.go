package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/buildcache/internal/ui/output"
	"go.trai.ch/buildcache/internal/ui/style"
)

// headingKey marks a record as a group heading. The pretty handler renders it
// as a heading line instead of an attribute.
const headingKey = "heading"

// PrettyHandler is a slog.Handler that produces human-readable, colored output.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
// The level is read on every record, so a *slog.LevelVar can be raised later.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one line per record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	prefix, color := levelStyle(r.Level)

	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		parts = append(parts, formatAttr(h.group, attr))
	}

	heading := false
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == headingKey {
			heading = true
		} else {
			parts = append(parts, formatAttr(h.group, attr))
		}
		return true
	})

	if heading {
		prefix, color = style.Dot+" ", style.Blue
	}

	line := prefix + r.Message
	if len(parts) > 0 {
		line += " " + strings.Join(parts, " ")
	}

	styled := h.out.String(line).Foreground(termenv.RGBColor(string(color)))
	if heading {
		styled = styled.Bold()
	}

	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// levelStyle returns the message prefix and color for level.
// Anything below info is debug output.
func levelStyle(level slog.Level) (string, lipgloss.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross + " ", style.Red
	case level >= slog.LevelWarn:
		return style.Warning + " ", style.Yellow
	case level < slog.LevelInfo:
		return "debug: ", style.Slate
	default:
		return "", style.Slate
	}
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return h.with(merged, h.group)
}

// WithGroup returns a new Handler whose attribute keys are prefixed with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return h.with(h.attrs, name)
}

func (h *PrettyHandler) with(attrs []slog.Attr, group string) *PrettyHandler {
	return &PrettyHandler{out: h.out, level: h.level, attrs: attrs, group: group}
}

func formatAttr(group string, attr slog.Attr) string {
	if group != "" {
		return group + "." + attr.Key + "=" + attr.Value.String()
	}
	return attr.Key + "=" + attr.Value.String()
}
