package logger

import "sync"

// LoggerInstance is a logging backend.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger fans every call out to all configured backends.
type Logger struct {
	instances []LoggerInstance
}

var (
	mu        sync.RWMutex
	singleton *Logger
)

// Init installs the global backends. Calls made before Init are dropped.
func Init(instances ...LoggerInstance) {
	mu.Lock()
	singleton = &Logger{instances: instances}
	mu.Unlock()
}

func each(fn func(LoggerInstance)) {
	mu.RLock()
	l := singleton
	mu.RUnlock()
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		fn(instance)
	}
}

// Log writes a message at the default level.
func Log(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Log(message, keyvals...) })
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Debug(message, keyvals...) })
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Info(message, keyvals...) })
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Error(message, keyvals...) })
}

// Fatal writes a message at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Fatal(message, keyvals...) })
}

// Scoped prepends a fixed set of key-value pairs to every call.
type Scoped struct {
	keyvals []any
}

// With returns a Scoped logger carrying keyvals, e.g. a request id.
func With(keyvals ...any) *Scoped {
	return &Scoped{keyvals: keyvals}
}

func (s *Scoped) merge(keyvals []any) []any {
	out := make([]any, 0, len(s.keyvals)+len(keyvals))
	out = append(out, s.keyvals...)
	return append(out, keyvals...)
}

func (s *Scoped) Debug(message string, keyvals ...any) { Debug(message, s.merge(keyvals)...) }
func (s *Scoped) Info(message string, keyvals ...any)  { Info(message, s.merge(keyvals)...) }
func (s *Scoped) Warn(message string, keyvals ...any)  { Warn(message, s.merge(keyvals)...) }
func (s *Scoped) Error(message string, keyvals ...any) { Error(message, s.merge(keyvals)...) }
