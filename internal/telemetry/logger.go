package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONLogger appends one JSON object per line. A logger opened with an empty
// path discards everything.
type JSONLogger struct {
	mu      sync.Mutex
	w       io.WriteCloser
	session string
	now     func() time.Time
}

func NewJSONLogger(path string) (*JSONLogger, error) {
	if path == "" {
		return &JSONLogger{w: nopCloser{Writer: io.Discard}, now: time.Now}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLogger{w: f, now: time.Now}, nil
}

// NewWriterLogger journals to w. Close closes w if it is an io.Closer.
func NewWriterLogger(w io.Writer) *JSONLogger {
	wc, ok := w.(io.WriteCloser)
	if !ok {
		wc = nopCloser{Writer: w}
	}
	return &JSONLogger{w: wc, now: time.Now}
}

// SetSession stamps every following entry with the session id.
func (l *JSONLogger) SetSession(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session = id
}

func (l *JSONLogger) Info(msg string, fields map[string]any) {
	l.log("info", msg, fields)
}

func (l *JSONLogger) Error(msg string, fields map[string]any) {
	l.log("error", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	if l == nil || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := map[string]any{
		"ts":    l.now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	if l.session != "" {
		entry["session"] = l.session
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, _ := json.Marshal(entry)
	_, _ = l.w.Write(append(b, '\n'))
}

func (l *JSONLogger) Close() error {
	if l == nil || l.w == nil {
		return nil
	}
	return l.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
