// Package log keeps recent slog records in memory so the TUI can show them.
package log

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultKeep is how many records a RecordHandler retains.
const DefaultKeep = 20

type recordBuffer struct {
	mu   sync.Mutex
	ch   chan<- tea.Msg
	keep int
	logs []slog.Record
}

// RecordHandler is a slog.Handler that remembers the latest records and
// forwards them to a tea.Program before passing them on.
type RecordHandler struct {
	slog.Handler
	buf *recordBuffer
}

// NewRecordHandler creates a new RecordHandler wrapping handler.
func NewRecordHandler(handler slog.Handler, ch chan<- tea.Msg) *RecordHandler {
	return &RecordHandler{
		Handler: handler,
		buf:     &recordBuffer{ch: ch, keep: DefaultKeep},
	}
}

// Handle stores the record, forwards it to the TUI without blocking and
// hands it to the wrapped handler.
func (h *RecordHandler) Handle(ctx context.Context, r slog.Record) error {
	h.buf.mu.Lock()
	h.buf.logs = append(h.buf.logs, r.Clone())
	if len(h.buf.logs) > h.buf.keep {
		h.buf.logs = h.buf.logs[len(h.buf.logs)-h.buf.keep:]
	}
	ch := h.buf.ch
	h.buf.mu.Unlock()

	if ch != nil {
		select {
		case ch <- LogMsg(r):
		default:
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h *RecordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RecordHandler{Handler: h.Handler.WithAttrs(attrs), buf: h.buf}
}

func (h *RecordHandler) WithGroup(name string) slog.Handler {
	return &RecordHandler{Handler: h.Handler.WithGroup(name), buf: h.buf}
}

// Logs returns a copy of the stored records, oldest first.
func (h *RecordHandler) Logs() []slog.Record {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	out := make([]slog.Record, len(h.buf.logs))
	copy(out, h.buf.logs)
	return out
}

// SetOutput sets the output channel for the handler.
func (h *RecordHandler) SetOutput(ch chan<- tea.Msg) {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.ch = ch
}

// LogMsg is a tea.Msg that represents a log message.
type LogMsg slog.Record

var defaultHandler *RecordHandler

// Init installs a RecordHandler around handler as the default logger.
func Init(handler slog.Handler) {
	defaultHandler = NewRecordHandler(handler, nil)
	slog.SetDefault(slog.New(defaultHandler))
}

// SetOutput sets the output channel for the default logger.
func SetOutput(ch chan<- tea.Msg) {
	if defaultHandler != nil {
		defaultHandler.SetOutput(ch)
	}
}

// Logs returns the stored log messages from the default logger.
func Logs() []slog.Record {
	if defaultHandler == nil {
		return nil
	}
	return defaultHandler.Logs()
}
