// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds an oto player from the pull callback as float32 PCM
package output

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows only one context per process
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

func sharedOtoContext(cfg Config) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != cfg.SampleRate || otoChannels != cfg.Channels {
			return nil, fmt.Errorf("oto context already running at %dHz %dch, cannot switch to %dHz %dch",
				otoRate, otoChannels, cfg.SampleRate, cfg.Channels)
		}
		log.Printf("Audio output already initialized with same format, reusing context")
		return otoCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.FramesPerBuffer) * time.Second / time.Duration(cfg.SampleRate) * 4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	otoCtx = ctx
	otoRate = cfg.SampleRate
	otoChannels = cfg.Channels
	return ctx, nil
}

// Oto output implementation using oto library
type Oto struct {
	gain

	mu       sync.Mutex
	cfg      Config
	cb       Callback
	player   *oto.Player
	buf      []float32
	complete bool
	stopped  bool

	done     chan struct{}
	doneOnce sync.Once
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
}

// Name identifies the backend
func (o *Oto) Name() string {
	return "oto"
}

// Open initializes the output device
func (o *Oto) Open(cfg Config, cb Callback) error {
	cfg, err := cfg.validate()
	if err != nil {
		return err
	}
	ctx, err := sharedOtoContext(cfg)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.cfg = cfg
	o.cb = cb
	o.buf = make([]float32, cfg.FramesPerBuffer*cfg.Channels)
	o.mu.Unlock()

	o.player = ctx.NewPlayer(o)
	log.Printf("Audio output initialized: %dHz, %d channels (oto/float32)", cfg.SampleRate, cfg.Channels)
	return nil
}

// Read is called by the oto player on its own goroutine
func (o *Oto) Read(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopped || o.complete {
		return 0, io.EOF
	}

	ch := o.cfg.Channels
	frames := min(len(p)/(4*ch), o.cfg.FramesPerBuffer)
	if frames == 0 {
		return 0, nil
	}

	buf := o.buf[:frames*ch]
	if o.cb(buf, frames) == Complete {
		o.complete = true
	}
	o.gain.apply(buf)
	putFloat32LE(p, buf)
	return len(buf) * 4, nil
}

// Start begins playback
func (o *Oto) Start() error {
	if o.player == nil {
		return ErrNotOpen
	}
	o.player.Play()

	o.wg.Add(1)
	go o.watch()
	return nil
}

// watch closes done once the player has drained after the last buffer
func (o *Oto) watch() {
	defer o.wg.Done()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-o.quit:
			return
		case <-ticker.C:
			o.mu.Lock()
			complete := o.complete
			o.mu.Unlock()
			if complete && !o.player.IsPlaying() {
				o.doneOnce.Do(func() { close(o.done) })
				return
			}
		}
	}
}

// Stop pauses the player; Read stops calling the callback
func (o *Oto) Stop() error {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()

	if o.player != nil {
		o.player.Pause()
	}
	o.quitOnce.Do(func() { close(o.quit) })
	o.wg.Wait()
	return nil
}

// Done is closed when the stream has played out
func (o *Oto) Done() <-chan struct{} {
	return o.done
}

// Close releases the player. The shared context stays alive for reuse.
func (o *Oto) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}
	return nil
}
