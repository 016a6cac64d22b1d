// ABOUTME: slog setup for the CLI with a colorized console handler
// ABOUTME: Logs go to stderr so command output on stdout stays clean

package main

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/pinoyflex/pinoyflex/internal/config"
)

func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelWarn
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = newConsoleHandler(w, level)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

var (
	stampColor     = color.New(color.FgHiBlack)
	keyColor       = color.New(color.FgHiBlack)
	componentColor = color.New(color.FgBlue)
)

// levelTags is ordered from most to least severe; a record takes the first
// tag its level reaches.
var levelTags = []struct {
	min   slog.Level
	label string
	paint *color.Color
}{
	{slog.LevelError, "error", color.New(color.FgRed, color.Bold)},
	{slog.LevelWarn, "warn ", color.New(color.FgYellow)},
	{slog.LevelInfo, "info ", color.New(color.FgCyan)},
	{slog.LevelDebug, "debug", color.New(color.FgMagenta)},
}

func levelTag(l slog.Level) string {
	for _, t := range levelTags {
		if l >= t.min {
			return t.paint.Sprint(t.label)
		}
	}
	return "trace"
}

// consoleHandler writes one line per record:
//
//	15:04:05 info  [posts] created post id=p_1 tag="Meal Prep"
//
// A top-level "component" attribute becomes the bracketed prefix. Groups are
// flattened into dotted keys.
type consoleHandler struct {
	out       io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	component string
	group     string
	preset    []byte
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	return &consoleHandler{out: w, mu: &sync.Mutex{}, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	component := h.component
	var tail []byte
	r.Attrs(func(a slog.Attr) bool {
		if h.group == "" && a.Key == "component" {
			component = a.Value.String()
			return true
		}
		tail = appendAttr(tail, h.group, a)
		return true
	})

	line := make([]byte, 0, 96+len(h.preset)+len(tail))
	if !r.Time.IsZero() {
		line = append(line, stampColor.Sprint(r.Time.Format(time.TimeOnly))...)
		line = append(line, ' ')
	}
	line = append(line, levelTag(r.Level)...)
	if component != "" {
		line = append(line, ' ')
		line = append(line, componentColor.Sprint("["+component+"]")...)
	}
	line = append(line, ' ')
	line = append(line, r.Message...)
	line = append(line, h.preset...)
	line = append(line, tail...)
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]byte(nil), h.preset...)
	for _, a := range attrs {
		if h.group == "" && a.Key == "component" {
			next.component = a.Value.String()
			continue
		}
		next.preset = appendAttr(next.preset, h.group, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

func appendAttr(buf []byte, group string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, group, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, keyColor.Sprint(group+a.Key+"=")...)
	return append(buf, formatValue(a.Value)...)
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		s = v.Duration().String()
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
