// Package logger is the JSON access log of the HTTP front end. Each turn,
// reset and report request is written as one line carrying the request ID,
// the user it concerns and the outcome.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level orders entries by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads a configured level name. Anything unrecognised is info.
func ParseLevel(s string) Level {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i)
		}
	}
	return LevelInfo
}

// Field is one key of an entry's "fields" object.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field  { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Err records err's message under "error"; a nil error is recorded as null.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Request and learner fields.
func RequestID(id string) Field     { return String(RequestIDKey, id) }
func UserID(id string) Field        { return String("user_id", id) }
func Component(name string) Field   { return String("component", name) }
func Method(m string) Field         { return String("method", m) }
func Path(p string) Field           { return String("path", p) }
func Status(code int) Field         { return Int("status", code) }
func Latency(d time.Duration) Field { return String("latency", d.String()) }

// RequestIDKey is the field the request ID middleware sets.
const RequestIDKey = "request_id"

// Entry is the JSON shape of one line.
type Entry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Caller  string         `json:"caller,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// sink is shared by a logger and everything derived from it so that lines
// from different requests never interleave.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(line)
}

// Logger writes entries at or above its level. Derived loggers carry the
// parent's fields and share its output.
type Logger struct {
	out       *sink
	level     Level
	fields    []Field
	addCaller bool
	clock     func() time.Time
}

// Options configures New. A nil Output is stdout and a nil Clock is time.Now.
type Options struct {
	Output    io.Writer
	Level     Level
	AddCaller bool
	Clock     func() time.Time
}

func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Logger{
		out:       &sink{w: opts.Output},
		level:     opts.Level,
		addCaller: opts.AddCaller,
		clock:     opts.Clock,
	}
}

// Default logs info and above to stdout.
func Default() *Logger {
	return New(Options{})
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	child := *l
	child.fields = append(append(make([]Field, 0, len(l.fields)+len(fields)), l.fields...), fields...)
	return &child
}

// WithRequestID tags every entry with the request ID.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(RequestID(requestID))
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}

	e := Entry{
		Time:    l.clock().UTC().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	// Frames: log, Info/Warn/..., caller.
	if l.addCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			e.Caller = fmt.Sprintf("%s:%d", file[strings.LastIndex(file, "/")+1:], line)
		}
	}
	if n := len(l.fields) + len(fields); n > 0 {
		e.Fields = make(map[string]any, n)
		for _, f := range l.fields {
			e.Fields[f.Key] = f.Value
		}
		// Per-call fields win over inherited ones.
		for _, f := range fields {
			e.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(e)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"time":%q,"level":%q,"msg":%q,"marshal_error":%q}`, e.Time, e.Level, msg, err.Error()))
	}
	l.out.write(append(data, '\n'))
}

type ctxKey struct{}

// WithContext stores l for FromContext.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request's logger, or Default outside a request.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}
