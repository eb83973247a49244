package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"
	"time"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("stream: response writer does not support flushing")

// Writer writes SSE frames, flushing after every frame. It is safe for
// concurrent use so heartbeats can interleave with events.
type Writer struct {
	mu        sync.Mutex
	w         io.Writer
	flusher   http.Flusher
	lastWrite time.Time
	finished  bool
}

// NewWriter prepares w for an event stream and sets the SSE headers.
// Headers are sent with the first frame.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &Writer{w: w, flusher: flusher}, nil
}

// WriteFrame writes one "event: <name>\ndata: <data>\n\n" frame.
func (w *Writer) WriteFrame(name string, data []byte) error {
	return w.write(name, data, false)
}

// Send writes an outbound event. After a terminal event no more heartbeats
// are written.
func (w *Writer) Send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	return w.write(string(ev.Kind), data, ev.Terminal())
}

func (w *Writer) write(name string, data []byte, last bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	w.flush()
	w.finished = w.finished || last
	return nil
}

// Ping writes a heartbeat comment. Clients ignore comment lines.
func (w *Writer) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished {
		return nil
	}
	if _, err := io.WriteString(w.w, ": ping\n\n"); err != nil {
		return fmt.Errorf("failed to write heartbeat: %w", err)
	}
	w.flush()
	return nil
}

func (w *Writer) flush() {
	w.flusher.Flush()
	w.lastWrite = time.Now()
}

func (w *Writer) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastWrite
}

// Heartbeat pings w whenever nothing has been written for interval, until
// ctx is done. A non-positive interval disables it.
func (w *Writer) Heartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(w.idleSince()) < interval {
				continue
			}
			if err := w.Ping(); err != nil {
				return
			}
		}
	}
}

// StartHeartbeat runs Heartbeat in a goroutine. The returned stop function
// cancels it and waits for it to exit, so no ping is written after stop
// returns.
func (w *Writer) StartHeartbeat(ctx context.Context, interval time.Duration) (stop func()) {
	hbCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Heartbeat(hbCtx, interval)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// Pump writes every event of seq to w while sending heartbeats on idle
// intervals. It returns the number of events written and the first write
// error.
func Pump(ctx context.Context, w *Writer, seq iter.Seq[Event], heartbeat time.Duration) (int, error) {
	stop := w.StartHeartbeat(ctx, heartbeat)
	defer stop()

	sent := 0
	for ev := range seq {
		if err := w.Send(ev); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
