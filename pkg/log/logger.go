package log

// Logger receives protocol events.
// Implementations must be safe for concurrent use and should return quickly.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events. Its zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// LoggerFunc adapts a function to the Logger interface.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// OrNoop returns l, or a NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

// Fanout forwards each event to its loggers in order, typically a
// SlogAdapter for the console and a FileLogger for the capture.
type Fanout []Logger

// NewMultiLogger builds a Fanout of the non-nil loggers.
func NewMultiLogger(loggers ...Logger) Fanout {
	out := make(Fanout, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Log forwards the event.
func (f Fanout) Log(event Event) {
	for _, l := range f {
		l.Log(event)
	}
}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
	_ Logger = Fanout(nil)
)
