// Package dataset records (pre-state, post-state) training samples and
// appends them to a pair of files shared by many generator processes.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/record"
)

const floatSize = record.FloatSize

// Floats per sample in each file.
const (
	InputFloats = 6 // position + direction
	LabelFloats = 3 // resulting position
)

// ErrBufferFull is returned by Record once the label buffer is at capacity.
var ErrBufferFull = errors.New("dataset: buffer full")

// ErrLockTimeout is returned when the primary file lock could not be
// acquired within the configured attempts.
var ErrLockTimeout = errors.New("dataset: lock not acquired")

// CorruptWriteError reports a write that did not store the whole buffer.
// Part of the buffer may already be in the file.
type CorruptWriteError struct {
	Path  string
	Wrote int
	Want  int
	Err   error
}

func (e *CorruptWriteError) Error() string {
	return fmt.Sprintf("wrote corrupted bytes to %s (wrote %d of %d bytes): %v", e.Path, e.Wrote, e.Want, e.Err)
}

func (e *CorruptWriteError) Unwrap() error { return e.Err }

// Options configures a Writer.
type Options struct {
	PrimaryPath     string        // input samples, also the lock file
	SecondaryPath   string        // label samples
	PrimaryFloats   int           // input buffer capacity in floats
	SecondaryFloats int           // label buffer capacity in floats
	LockAttempts    int           // Flock attempts before giving up
	LockBackoff     time.Duration // initial wait between attempts, doubled each retry
}

// OptionsFromConfig builds writer options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PrimaryPath:     cfg.Dataset.PrimaryPath,
		SecondaryPath:   cfg.Dataset.SecondaryPath,
		PrimaryFloats:   cfg.Derived.PrimaryCapacity,
		SecondaryFloats: cfg.Derived.SecondaryCapacity,
		LockAttempts:    cfg.Dataset.LockAttempts,
		LockBackoff:     cfg.Derived.LockBackoff,
	}
}

// FlushResult describes a completed flush.
type FlushResult struct {
	PrimaryBytes   int
	SecondaryBytes int
	LockAttempts   int
	LockWait       time.Duration
}

// Writer accumulates samples in two append-only buffers and flushes them
// as a unit. It is used for a single flush; it is not reset afterwards.
type Writer struct {
	opts Options
	x    []byte
	y    []byte
	xCap int
	yCap int
}

// NewWriter allocates both buffers up front.
func NewWriter(opts Options) *Writer {
	if opts.LockAttempts < 1 {
		opts.LockAttempts = 1
	}
	xCap := opts.PrimaryFloats * floatSize
	yCap := opts.SecondaryFloats * floatSize
	return &Writer{
		opts: opts,
		x:    make([]byte, 0, xCap),
		y:    make([]byte, 0, yCap),
		xCap: xCap,
		yCap: yCap,
	}
}

// Record appends one sample: the sphere's position and direction before
// the step to the input buffer, and its position after the step to the
// label buffer.
func (w *Writer) Record(pre components.Sphere, post components.Position) error {
	if w.Full() {
		return ErrBufferFull
	}
	w.x = record.Append(w.x,
		float32(pre.Pos.X), float32(pre.Pos.Y), float32(pre.Pos.Z),
		float32(pre.Dir.X), float32(pre.Dir.Y), float32(pre.Dir.Z),
	)
	w.y = record.Append(w.y, float32(post.X), float32(post.Y), float32(post.Z))
	return nil
}

// Full reports whether the label buffer has reached capacity.
func (w *Writer) Full() bool {
	return len(w.y) >= w.yCap
}

// Len returns the number of floats buffered for each file.
func (w *Writer) Len() (input, label int) {
	return len(w.x) / floatSize, len(w.y) / floatSize
}

// Flush appends both buffers to their files while holding an exclusive
// advisory lock on the primary file. The lock covers both writes, so
// concurrent generators never interleave their primary and secondary
// blocks differently. A short write returns *CorruptWriteError and the
// caller is expected to stop.
func (w *Writer) Flush() (FlushResult, error) {
	var res FlushResult

	fx, err := os.OpenFile(w.opts.PrimaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0700)
	if err != nil {
		return res, fmt.Errorf("opening primary file: %w", err)
	}
	defer fx.Close()

	start := time.Now()
	attempts, err := lockExclusive(fx, w.opts.LockAttempts, w.opts.LockBackoff)
	res.LockAttempts = attempts
	res.LockWait = time.Since(start)
	if err != nil {
		return res, err
	}
	defer func() {
		if err := unix.Flock(int(fx.Fd()), unix.LOCK_UN); err != nil {
			slog.Warn("unlocking primary file", "path", w.opts.PrimaryPath, "error", err)
		}
	}()

	n, err := fx.Write(w.x)
	res.PrimaryBytes = n
	if n != len(w.x) || err != nil {
		return res, &CorruptWriteError{Path: w.opts.PrimaryPath, Wrote: n, Want: len(w.x), Err: err}
	}

	// Not locked on its own; the primary lock governs both files.
	fy, err := os.OpenFile(w.opts.SecondaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0700)
	if err != nil {
		return res, fmt.Errorf("opening secondary file: %w", err)
	}
	n, err = fy.Write(w.y)
	res.SecondaryBytes = n
	if n != len(w.y) || err != nil {
		fy.Close()
		return res, &CorruptWriteError{Path: w.opts.SecondaryPath, Wrote: n, Want: len(w.y), Err: err}
	}
	if err := fy.Close(); err != nil {
		return res, fmt.Errorf("closing secondary file: %w", err)
	}

	return res, nil
}

// lockExclusive takes LOCK_EX on f, retrying failed calls with doubling
// backoff. It returns the number of attempts made.
func lockExclusive(f *os.File, attempts int, backoff time.Duration) (int, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err == nil {
			return i, nil
		}
		if i < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return attempts, fmt.Errorf("%w after %d attempts: %v", ErrLockTimeout, attempts, err)
}
