// ABOUTME: Headless audio output implementation
// ABOUTME: Pulls buffers on a goroutine without touching an audio device
package output

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// NullOptions configures the headless backend
type NullOptions struct {
	// Realtime paces buffers at the stream's sample rate
	Realtime bool

	// OnBuffer sees every buffer after gain is applied. It runs on the
	// driver goroutine and must not retain buf.
	OnBuffer func(buf []float32)
}

// Null output drives the callback without producing sound
type Null struct {
	gain

	opts    NullOptions
	cfg     Config
	cb      Callback
	buf     []float32
	buffers atomic.Int64

	mu       sync.Mutex
	running  bool
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// NewNull creates a headless output
func NewNull(opts NullOptions) *Null {
	return &Null{
		opts: opts,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Name identifies the backend
func (n *Null) Name() string {
	return "null"
}

// Open records the stream format
func (n *Null) Open(cfg Config, cb Callback) error {
	cfg, err := cfg.validate()
	if err != nil {
		return err
	}
	n.cfg = cfg
	n.cb = cb
	n.buf = make([]float32, cfg.FramesPerBuffer*cfg.Channels)
	log.Printf("Audio output initialized: %dHz, %d channels (null)", cfg.SampleRate, cfg.Channels)
	return nil
}

// Start launches the driver goroutine
func (n *Null) Start() error {
	if n.cb == nil {
		return ErrNotOpen
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return nil
	}
	n.running = true

	n.wg.Add(1)
	go n.run()
	return nil
}

func (n *Null) run() {
	defer n.wg.Done()

	var tick <-chan time.Time
	if n.opts.Realtime {
		period := time.Duration(n.cfg.FramesPerBuffer) * time.Second / time.Duration(n.cfg.SampleRate)
		ticker := time.NewTicker(max(period, time.Millisecond))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-n.quit:
			return
		default:
		}

		if tick != nil {
			select {
			case <-n.quit:
				return
			case <-tick:
			}
		}

		status := n.cb(n.buf, n.cfg.FramesPerBuffer)
		n.gain.apply(n.buf)
		if n.opts.OnBuffer != nil {
			n.opts.OnBuffer(n.buf)
		}
		n.buffers.Add(1)

		if status == Complete {
			n.doneOnce.Do(func() { close(n.done) })
			return
		}
	}
}

// Buffers reports how many callbacks have completed
func (n *Null) Buffers() int64 {
	return n.buffers.Load()
}

// Stop halts the driver and waits for it to exit
func (n *Null) Stop() error {
	n.quitOnce.Do(func() { close(n.quit) })
	n.wg.Wait()
	return nil
}

// Done is closed after the Complete buffer
func (n *Null) Done() <-chan struct{} {
	return n.done
}

// Close stops the driver if it is still running
func (n *Null) Close() error {
	return n.Stop()
}
