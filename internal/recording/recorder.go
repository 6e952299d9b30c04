package recording

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
)

const DefaultInterval = time.Second

// Microphone hands out audio streams. Closing a stream releases the device;
// reads made after Close drain what was captured and then return io.EOF.
type Microphone interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Recorder owns at most one capture at a time together with its tick source.
// It is safe for concurrent use.
type Recorder struct {
	microphone Microphone
	interval   time.Duration

	mu      sync.Mutex
	current *capture
}

type capture struct {
	stream io.ReadCloser
	ticker *time.Ticker
	done   chan struct{}
	copied chan struct{}
	audio  bytes.Buffer
	err    error
}

var closed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

func New(microphone Microphone, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Recorder{
		microphone: microphone,
		interval:   interval,
	}
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return ErrAlreadyRecording
	}

	stream, err := r.microphone.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	c := &capture{
		stream: stream,
		ticker: time.NewTicker(r.interval),
		done:   make(chan struct{}),
		copied: make(chan struct{}),
	}

	go func() {
		defer close(c.copied)
		_, c.err = io.Copy(&c.audio, stream)
	}()

	r.current = c

	return nil
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current != nil
}

// Ticks returns the tick channel of the current capture, or nil when idle.
func (r *Recorder) Ticks() <-chan time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return nil
	}
	return r.current.ticker.C
}

// Done returns a channel closed when the current capture ends. When idle the
// returned channel is already closed.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return closed
	}
	return r.current.done
}

// Stop ends the capture and returns everything it recorded.
func (r *Recorder) Stop() ([]byte, error) {
	c, err := r.take()
	if err != nil {
		return nil, err
	}

	err = c.finish()
	if err != nil {
		return nil, err
	}

	return c.audio.Bytes(), nil
}

// Abort ends the capture and discards the audio.
func (r *Recorder) Abort() error {
	c, err := r.take()
	if err != nil {
		return err
	}

	return c.finish()
}

// Close releases the microphone if a capture is still running.
func (r *Recorder) Close() error {
	err := r.Abort()
	if errors.Is(err, ErrNotRecording) {
		return nil
	}
	return err
}

func (r *Recorder) take() (*capture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.current
	if c == nil {
		return nil, ErrNotRecording
	}
	r.current = nil

	return c, nil
}

func (c *capture) finish() error {
	c.ticker.Stop()
	close(c.done)

	closeErr := c.stream.Close()
	<-c.copied

	if c.err != nil {
		return fmt.Errorf("failed to read audio: %w", c.err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to release microphone: %w", closeErr)
	}

	return nil
}
