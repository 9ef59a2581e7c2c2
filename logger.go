// logger.go: the front door — level gate, context merge, filter,
// sampler, then fan-out to writers or the Collector.
//
// The hot path combines the level and closed checks, does minimal work
// before the sampler can reject a record, and gates caller capture
// behind a config flag. With() returns a derived Logger rather than
// mutating the receiver, the idiom contextscope.go relies on.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-errors"
)

// LoggerState is the Logger lifecycle:
//
//	created → started ⇄ flushing → stopped
type LoggerState int32

const (
	LoggerCreated LoggerState = iota
	LoggerStarted
	LoggerFlushing
	LoggerStopped
)

var funcNameCache sync.Map // map[uintptr]string, shared across Loggers in the process

// Logger is the library's front door: every record a caller emits
// passes through Log (or a level-named convenience method) before
// reaching a Writer.
type Logger struct {
	name            string
	level           *AtomicLevel
	filter          Filter
	sampler         Sampler
	stackTraceLevel Level
	enableCaller    bool
	callerSkip      int

	async     bool
	collector *Collector
	writers   []Writer // sync-mode fan-out set; unused in async mode

	wal               *WAL
	crashGuardEnabled bool

	// fields/trace/hasTrace are the overlay a derived Logger (via
	// PushScope/PushTrace/With) carries; the root Logger's are empty.
	fields   []Field
	trace    TraceContext
	hasTrace bool

	state   int32 // atomic LoggerState
	seq     uint64
	flushMu sync.Mutex
}

// NewLogger builds a Logger from cfg and transitions it directly to
// Started — construction and Start are one step in this API.
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.Filter == nil {
		cfg.Filter = AllowAll
	}
	if len(cfg.Writers) == 0 {
		cfg.Writers = []Writer{NewStreamWriter("stdout", os.Stdout)}
	}
	if err := validateWriterNames(cfg.Writers); err != nil {
		return nil, err
	}

	l := &Logger{
		name:            cfg.Name,
		level:           NewAtomicLevel(cfg.Level),
		filter:          cfg.Filter,
		sampler:         cfg.Sampler,
		stackTraceLevel: cfg.StackTraceLevel,
		enableCaller:    cfg.EnableCaller,
		callerSkip:      cfg.CallerSkip,
		async:           cfg.Async,
	}

	if cfg.WAL != nil {
		wal, err := newWAL(*cfg.WAL)
		if err != nil {
			return nil, err
		}
		l.wal = wal
		if cfg.EnableCrashGuard {
			RegisterCrashGuard(wal)
			l.crashGuardEnabled = true
		}
	}

	if cfg.Async {
		coll, err := NewCollector(cfg.Collector, cfg.Writers)
		if err != nil {
			return nil, err
		}
		if err := coll.Start(); err != nil {
			return nil, err
		}
		l.collector = coll
	} else {
		l.writers = append([]Writer(nil), cfg.Writers...)
	}

	atomic.StoreInt32(&l.state, int32(LoggerStarted))
	return l, nil
}

func validateWriterNames(writers []Writer) error {
	seen := make(map[string]bool, len(writers))
	for _, w := range writers {
		name := w.Name()
		if name == "" {
			return NewError(ErrCodeInvalidConfig, "logger: writer name must not be empty")
		}
		if seen[name] {
			return NewError(ErrCodeInvalidConfig, "logger: duplicate writer name "+name)
		}
		seen[name] = true
	}
	return nil
}

// Name returns the Logger's configured name.
func (l *Logger) Name() string { return l.name }

// State returns the Logger's current lifecycle state.
func (l *Logger) State() LoggerState { return LoggerState(atomic.LoadInt32(&l.state)) }

// SetMinLevel updates the atomic threshold with no ordering effect on
// in-flight records.
func (l *Logger) SetMinLevel(lvl Level) { l.level.SetLevel(lvl) }

// MinLevel returns the current threshold.
func (l *Logger) MinLevel() Level { return l.level.Level() }

// clone shallow-copies the Logger, deep-copying only the field overlay;
// everything else (level, collector, writer set, wal) is shared, since
// a derived Logger from PushScope/With is a view over the same pipeline
// with a different field/trace overlay, not an independent instance.
func (l *Logger) clone() *Logger {
	c := *l
	c.fields = append([]Field(nil), l.fields...)
	return &c
}

// With returns a derived Logger carrying fields merged onto the current
// overlay (call-site fields on future calls still win over these).
func (l *Logger) With(fields ...Field) *Logger { return l.PushScope(fields...).Logger() }

// WithTrace returns a derived Logger carrying tc as its trace context.
func (l *Logger) WithTrace(tc TraceContext) *Logger { return l.PushTrace(tc).Logger() }

// Log is the minimal emission form: level, message, optional
// structured fields.
func (l *Logger) Log(level Level, message string, fields ...Field) error {
	return l.log(level, message, Location{}, fields)
}

// LogWithLocation carries an explicit source location, bypassing
// runtime.Caller even if EnableCaller is configured.
func (l *Logger) LogWithLocation(level Level, message, file string, line int, function string, fields ...Field) error {
	return l.log(level, message, Location{File: file, Line: line, Function: function}, fields)
}

func (l *Logger) Trace(message string, fields ...Field) error {
	return l.log(Trace, message, Location{}, fields)
}
func (l *Logger) Debug(message string, fields ...Field) error {
	return l.log(Debug, message, Location{}, fields)
}
func (l *Logger) Info(message string, fields ...Field) error {
	return l.log(Info, message, Location{}, fields)
}
func (l *Logger) Warning(message string, fields ...Field) error {
	return l.log(Warning, message, Location{}, fields)
}
func (l *Logger) Error(message string, fields ...Field) error {
	return l.log(Error, message, Location{}, fields)
}
func (l *Logger) Critical(message string, fields ...Field) error {
	return l.log(Critical, message, Location{}, fields)
}

// log is the shared hot path every public emission method funnels
// through, so runtime.Caller's skip count stays constant regardless of
// which convenience wrapper the caller used.
func (l *Logger) log(level Level, message string, loc Location, fields []Field) error {
	if LoggerState(atomic.LoadInt32(&l.state)) == LoggerStopped {
		return NewError(ErrCodeLoggerStopped, "logger: stopped")
	}

	// Step 1: threshold gate, lock-free, nothing allocated on reject.
	if !l.level.Enabled(level) {
		return nil
	}

	if l.enableCaller && loc.IsZero() {
		loc = l.getCaller()
	}

	// Step 2: context merge — call-site fields win on key collision.
	merged := mergeFields(l.fields, fields)

	rec := Record{
		Level:     level,
		Message:   truncateMessage(message),
		Timestamp: CachedTime(),
		Location:  loc,
		Fields:    merged,
		seq:       atomic.AddUint64(&l.seq, 1),
	}
	if l.hasTrace {
		rec.Trace = l.trace
	}
	if l.stackTraceLevel != Off && level >= l.stackTraceLevel {
		if stack := errors.CaptureStacktrace(l.callerSkip); stack != nil {
			rec.StackTrace = stack.String()
		}
	}

	// Step 3: filter.
	if !l.filter.Allow(rec) {
		return nil
	}

	// Step 4: sampler.
	if l.sampler != nil && l.sampler.Sample(rec) == SamplingDrop {
		return nil
	}

	if l.wal != nil {
		if err := l.wal.Write(rec); err != nil {
			handleError(WrapError(err, ErrCodeWALWrite, "logger: wal write failed"))
		}
	}

	// Step 5: dispatch.
	if l.async {
		if err := l.collector.Enqueue(rec); err != nil {
			return err
		}
		return nil
	}
	return l.fanOutSync(rec)
}

// LogDeadline is the async-mode submission form that accepts a
// deadline: on expiry it returns SubmissionTimeout rather than
// applying the Collector's configured overflow policy indefinitely.
// In async mode it skips caller capture and stack-trace capture and
// never writes to the WAL — a caller reaching for a bounded worst-case
// latency is trading away the normal path's richness for that bound. In
// sync mode it ignores deadline and takes the normal log path, with its
// caller capture, stack-trace capture and WAL write.
func (l *Logger) LogDeadline(level Level, message string, deadline time.Duration, fields ...Field) error {
	if LoggerState(atomic.LoadInt32(&l.state)) == LoggerStopped {
		return NewError(ErrCodeLoggerStopped, "logger: stopped")
	}
	if !l.level.Enabled(level) {
		return nil
	}
	if !l.async {
		return l.log(level, message, Location{}, fields)
	}

	merged := mergeFields(l.fields, fields)
	rec := Record{
		Level:     level,
		Message:   truncateMessage(message),
		Timestamp: CachedTime(),
		Fields:    merged,
		seq:       atomic.AddUint64(&l.seq, 1),
	}
	if l.hasTrace {
		rec.Trace = l.trace
	}
	if !l.filter.Allow(rec) {
		return nil
	}
	if l.sampler != nil && l.sampler.Sample(rec) == SamplingDrop {
		return nil
	}
	return l.collector.EnqueueBlocking(rec, deadline)
}

func (l *Logger) fanOutSync(rec Record) error {
	var firstErr error
	failCount := 0
	for _, w := range l.writers {
		if err := w.Write(rec); err != nil {
			failCount++
			if firstErr == nil {
				firstErr = err
			}
			handleError(WrapError(err, ErrCodeWriteFailed, "logger: sync writer failed").
				WithContext("writer", w.Name()))
		}
	}
	if firstErr != nil {
		return &FlushError{First: firstErr, Count: failCount}
	}
	return nil
}

// getCaller captures the call site, caching the function name per
// program counter to avoid runtime.FuncForPC's linear scan on every
// hot-path hit.
func (l *Logger) getCaller() Location {
	pc, file, line, ok := runtime.Caller(3 + l.callerSkip)
	if !ok {
		return Location{}
	}
	var fn string
	if v, cached := funcNameCache.Load(pc); cached {
		fn, _ = v.(string)
	} else if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
		funcNameCache.Store(pc, fn)
	}
	return Location{File: file, Line: line, Function: fn}
}

// Flush posts a barrier ordered with respect to every submission the
// calling thread made before this call, and blocks until every writer
// has completed flush. Concurrent Flush calls serialize on flushMu:
// each caller posts its own barrier in turn, after the previous
// caller's flush has finished.
func (l *Logger) Flush(deadline time.Duration) error {
	if LoggerState(atomic.LoadInt32(&l.state)) == LoggerStopped {
		return NewError(ErrCodeLoggerStopped, "logger: stopped")
	}
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	atomic.StoreInt32(&l.state, int32(LoggerFlushing))
	defer atomic.CompareAndSwapInt32(&l.state, int32(LoggerFlushing), int32(LoggerStarted))

	if l.async {
		return l.collector.Flush(deadline)
	}
	var firstErr error
	failCount := 0
	for _, w := range l.writers {
		if err := w.Flush(); err != nil {
			failCount++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return &FlushError{First: firstErr, Count: failCount}
	}
	return nil
}

// Shutdown transitions the Logger to Stopped. In async mode it drains
// the Collector within grace; past the deadline the Collector reports a
// forced shutdown but still writes the records already queued (see
// Collector.Shutdown). In sync mode it flushes every writer directly.
// Shutdown never returns to a caller an error it cannot act on —
// failures are reported through the error handler.
func (l *Logger) Shutdown(grace time.Duration) error {
	if !atomic.CompareAndSwapInt32(&l.state, int32(LoggerStarted), int32(LoggerStopped)) &&
		!atomic.CompareAndSwapInt32(&l.state, int32(LoggerFlushing), int32(LoggerStopped)) {
		return nil // already stopped
	}

	if l.async {
		if err := l.collector.Shutdown(grace); err != nil {
			handleError(WrapError(err, ErrCodeShutdownForce, "logger: collector shutdown failed"))
		}
	} else {
		for _, w := range l.writers {
			if err := w.Flush(); err != nil {
				handleError(WrapError(err, ErrCodeFlushFailed, "logger: shutdown flush failed").
					WithContext("writer", w.Name()))
			}
		}
	}

	if l.wal != nil {
		if l.crashGuardEnabled {
			UnregisterCrashGuard(l.wal)
		}
		if err := l.wal.Close(); err != nil {
			handleError(WrapError(err, ErrCodeWALWrite, "logger: wal close failed"))
		}
	}
	return nil
}
