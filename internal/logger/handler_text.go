// File: internal/logger/handler_text.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColorTextHandler renders records as "[time] [LEVEL] msg k=v ...".
type ColorTextHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []boundAttr
	groups   []string
	useColor bool
}

// boundAttr is a WithAttrs attribute with the group prefix open at the time.
type boundAttr struct {
	prefix string
	attr   slog.Attr
}

// NewColorTextHandler creates a handler writing to w.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{opts: opts, w: w, mu: &sync.Mutex{}, useColor: useColor}
}

func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := fmt.Appendf(nil, "[%s] [%s] %s", r.Time.Format("2006-01-02 15:04:05"), h.level(r.Level), r.Message)
	for _, b := range h.attrs {
		buf = h.appendAttr(buf, b.prefix, b.attr)
	}
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	_, err := h.w.Write(buf)
	h.mu.Unlock()
	return err
}

func (h *ColorTextHandler) level(l slog.Level) string {
	var name, color string
	switch {
	case l < slog.LevelInfo:
		name, color = "DEBUG", colorGray
	case l < slog.LevelWarn:
		name, color = "INFO", colorGreen
	case l < slog.LevelError:
		name, color = "WARN", colorYellow
	default:
		name, color = "ERROR", colorRed
	}
	if h.useColor {
		return color + name + colorReset
	}
	return name
}

// prefix is the dotted group path for keys, e.g. "pool.slots.".
func (h *ColorTextHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range v.Group() {
			buf = h.appendAttr(buf, prefix, ga)
		}
		return buf
	}
	key := prefix + a.Key
	var s string
	switch v.Kind() {
	case slog.KindFloat64:
		s = fmt.Sprintf("%.3f", v.Float64())
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339)
	case slog.KindAny:
		s = fmt.Sprintf("%v", v.Any())
	default:
		s = v.String()
	}
	if h.useColor {
		return fmt.Appendf(buf, " %s%s%s=%s", colorCyan, key, colorReset, s)
	}
	return fmt.Appendf(buf, " %s=%s", key, s)
}

func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := append([]boundAttr{}, h.attrs...)
	prefix := h.prefix()
	for _, a := range attrs {
		bound = append(bound, boundAttr{prefix: prefix, attr: a})
	}
	return &ColorTextHandler{
		opts:     h.opts,
		w:        h.w,
		mu:       h.mu,
		attrs:    bound,
		groups:   h.groups,
		useColor: h.useColor,
	}
}

// WithGroup qualifies later attribute keys as "group.key".
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ColorTextHandler{
		opts:     h.opts,
		w:        h.w,
		mu:       h.mu,
		attrs:    h.attrs,
		groups:   append(append([]string{}, h.groups...), name),
		useColor: h.useColor,
	}
}
