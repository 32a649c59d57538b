// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Drives the pull callback straight from the miniaudio device thread
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	gain

	mu       sync.Mutex
	cfg      Config
	cb       Callback
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	buf      []float32
	complete bool
	stopped  bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewMalgo creates a new Malgo output
func NewMalgo() *Malgo {
	return &Malgo{done: make(chan struct{})}
}

// Name identifies the backend
func (m *Malgo) Name() string {
	return "malgo"
}

// Open initializes the output device with specified format
func (m *Malgo) Open(cfg Config, cb Callback) error {
	cfg, err := cfg.validate()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("malgo output already open")
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	m.cfg = cfg
	m.cb = cb
	m.buf = make([]float32, cfg.FramesPerBuffer*cfg.Channels)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.FramesPerBuffer)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pOutputSample, frameCount)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	m.device = device

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/F32)", cfg.SampleRate, cfg.Channels)
	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || m.complete {
		clear(pOutput)
		// The buffer after the completing one means the last real one was taken
		if m.complete {
			m.doneOnce.Do(func() { close(m.done) })
		}
		return
	}

	ch := m.cfg.Channels
	frames := int(frameCount)
	if need := frames * ch; need > cap(m.buf) {
		// miniaudio may exceed the requested period; grow once outside steady state
		m.buf = make([]float32, need)
	}
	buf := m.buf[:frames*ch]

	if m.cb(buf, frames) == Complete {
		m.complete = true
	}
	m.gain.apply(buf)
	putFloat32LE(pOutput, buf)
}

// Start starts the device
func (m *Malgo) Start() error {
	m.mu.Lock()
	device := m.device
	m.mu.Unlock()

	if device == nil {
		return ErrNotOpen
	}
	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

// Stop stops the device and blocks further callbacks
func (m *Malgo) Stop() error {
	m.mu.Lock()
	m.stopped = true
	device := m.device
	m.mu.Unlock()

	if device == nil {
		return nil
	}
	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

// Done is closed when the stream has played out
func (m *Malgo) Done() <-chan struct{} {
	return m.done
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	device := m.device
	ctx := m.malgoCtx
	m.device = nil
	m.malgoCtx = nil
	m.mu.Unlock()

	if device != nil {
		device.Uninit()
	}
	if ctx != nil {
		if err := ctx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		ctx.Free()
	}
	return nil
}
