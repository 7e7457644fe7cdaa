// Package debug writes a per-session log file for runs that own the
// terminal, such as the TUI.
package debug

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// File is a truncated-on-open session log.
type File struct {
	mu sync.Mutex
	f  *os.File
}

// Open truncates path and writes a session header to it.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	l := &File{f: f}
	l.mark("--- wifi-proxy debug log ---")
	return l, nil
}

func (l *File) mark(s string) {
	fmt.Fprintf(l, "%s: %s\n", time.Now().Format("15:04:05.000"), s)
}

// Write appends p to the log. It is safe for concurrent use.
func (l *File) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Write(p)
}

// Close writes a session footer and closes the file.
func (l *File) Close() error {
	l.mark("--- session ended ---")
	return l.f.Close()
}
