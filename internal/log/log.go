// File: internal/log/log.go
// Author: momentics <momentics@gmail.com>
//
// Logging setup shared by all statemux packages.

// Package log provides logging utilities.
package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/phsym/console-slog"
	slogformatter "github.com/samber/slog-formatter"

	"github.com/momentics/statemux/api"
)

var newHandler = slogformatter.NewFormatterHandler(
	slogformatter.ErrorFormatter("error"),
	slogformatter.FormatByType(func(o api.Observable) slog.Value {
		return slog.GroupValue(
			slog.String("type", fmt.Sprintf("%T", o)),
			slog.String("name", o.Name()),
		)
	}),
)

// Def is the default logger.
var Def = slog.New(newHandler(
	console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339Nano,
	}),
))

// Dev is a developer logger with verbose, sorted output.
var Dev = slog.New(newHandler(
	devslog.NewHandler(os.Stderr, &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		},
		SortKeys:   true,
		TimeFormat: time.RFC3339Nano,
	}),
))

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h noopHandler) WithGroup(string) slog.Handler { return h }

// Noop is a noop logger.
var Noop = slog.New(noopHandler{})

// New builds a logger for the given level ("debug", "info", "warn", "error")
// and format ("console", "dev", "off").
func New(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	switch format {
	case "dev":
		return slog.New(newHandler(devslog.NewHandler(os.Stderr, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{AddSource: true, Level: lvl},
			SortKeys:       true,
			TimeFormat:     time.RFC3339Nano,
		})))
	case "off":
		return Noop
	default:
		return slog.New(newHandler(console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level:      lvl,
			TimeFormat: time.RFC3339Nano,
		})))
	}
}
