package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var Log *slog.Logger

var (
	broadcastCh chan<- string
	history     []string
	historyMu   sync.RWMutex
	maxHistory  = 500
)

// SetBroadcast sets a channel that receives a formatted copy of every
// log record, used by the API server to stream logs over WebSocket.
func SetBroadcast(ch chan<- string) {
	broadcastCh = ch
}

// Init initializes the global logger
func Init(levelStr string) {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	Log = slog.New(&broadcastHandler{Handler: baseHandler})
	slog.SetDefault(Log)
}

// broadcastHandler forwards records to stdout, the in-memory history
// ring and the broadcast channel (non-blocking).
type broadcastHandler struct {
	slog.Handler
}

func (h *broadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	msg := fmt.Sprintf("time=%s level=%s msg=%q", r.Time.Format("2006-01-02T15:04:05.000-07:00"), r.Level, r.Message)
	r.Attrs(func(a slog.Attr) bool {
		msg += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	historyMu.Lock()
	if len(history) >= maxHistory {
		history = history[1:]
	}
	history = append(history, msg)
	historyMu.Unlock()

	err := h.Handler.Handle(ctx, r)

	if broadcastCh != nil {
		select {
		case broadcastCh <- msg:
		default:
			// Drop if channel is full to avoid blocking
		}
	}
	return err
}

// GetHistory returns a copy of the recent log lines.
func GetHistory() []string {
	historyMu.RLock()
	defer historyMu.RUnlock()
	out := make([]string, len(history))
	copy(out, history)
	return out
}

func Debug(msg string, args ...any) {
	ensure().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	ensure().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	ensure().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	ensure().Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	ensure().Error(msg, args...)
	os.Exit(1)
}

func ensure() *slog.Logger {
	if Log == nil {
		Init("INFO")
	}
	return Log
}
