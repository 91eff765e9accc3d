// Package logging provides the node's structured logger: a slog.Handler
// that prints a short, colorized, human-readable line per record, with a
// per-component prefix. Grounded on morelucks-gean's
// observability/logging package (same project family as the teacher,
// mined for the ambient stack the teacher itself doesn't carry).
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ssflabs/gean/types"
)

// Component names used as the "component" attribute on every log record
// emitted through NewComponentLogger.
const (
	CompNode      = "node"
	CompConsensus = "consensus"
	CompNetwork   = "network"
	CompGossip    = "gossip"
	CompReqResp   = "reqresp"
	CompStorage   = "storage"
	CompMetrics   = "metrics"
	CompClock     = "clock"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

var root *slog.Logger

// Init installs the process-wide root logger at the given level
// ("debug", "info", "warn", "error").
func Init(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	root = slog.New(newPrettyHandler(os.Stderr, lvl))
}

// NewComponentLogger returns a logger tagging every record with the
// given component name. Init must be called first; if it wasn't, a
// default info-level logger is installed lazily.
func NewComponentLogger(component string) *slog.Logger {
	if root == nil {
		Init("info")
	}
	return root.With(slog.String("component", component))
}

// ShortHash formats h the way log lines should reference block/vote
// hashes: short, not the full 32 bytes.
func ShortHash(h types.Hash) string { return h.Short() }

type prettyHandler struct {
	w          io.Writer
	level      slog.Level
	boundAttrs []slog.Attr
}

func newPrettyHandler(w io.Writer, level slog.Level) *prettyHandler {
	return &prettyHandler{w: w, level: level}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	color := levelColor(r.Level)
	ts := r.Time.Format(time.TimeOnly)

	var component string
	var attrs []string

	collect := func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
			return true
		}
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	}
	for _, a := range h.boundAttrs {
		collect(a)
	}
	r.Attrs(collect)

	line := fmt.Sprintf("%s%s%s %s[%-5s]%s", colorGray, ts, colorReset, color, r.Level.String(), colorReset)
	if component != "" {
		line += fmt.Sprintf(" %s[%s]%s", colorBlue, component, colorReset)
	}
	line += " " + r.Message
	if len(attrs) > 0 {
		line += " " + strings.Join(attrs, " ")
	}

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &prettyHandler{w: h.w, level: h.level}
	out.boundAttrs = append(append([]slog.Attr{}, h.boundAttrs...), attrs...)
	return out
}

func (h *prettyHandler) WithGroup(_ string) slog.Handler { return h }

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	default:
		return colorGray
	}
}
