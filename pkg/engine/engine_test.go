package engine

import (
	"math"
	"testing"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/stretchr/testify/require"
)

func rampModel(frames, channels int) *audio.Model {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = float32(i+1) / float32(len(samples)+1)
	}
	return audio.NewFloat32Model(8000, channels, samples)
}

func startedEngine(t *testing.T, m *audio.Model) *Engine {
	t.Helper()
	e := New(WithSeed(1))
	require.NoError(t, e.Load(m))
	require.NoError(t, e.Start())
	return e
}

func TestPhaseTransitions(t *testing.T) {
	e := New(WithSeed(1))
	require.Equal(t, Idle, e.Phase())
	require.ErrorIs(t, e.Start(), ErrNotLoaded)

	require.NoError(t, e.Load(rampModel(4, 1)))
	require.Equal(t, Loaded, e.Phase())

	require.NoError(t, e.Start())
	require.Equal(t, Playing, e.Phase())
	require.True(t, e.Session().Playing())
	require.ErrorIs(t, e.Start(), ErrBusy)
	require.ErrorIs(t, e.Load(rampModel(2, 1)), ErrBusy)

	buf := make([]float32, 8)
	require.Equal(t, output.Continue, e.Fill(buf, 4))
	require.Equal(t, Playing, e.Phase())
	require.Equal(t, output.Complete, e.Fill(buf, 4))
	require.Equal(t, Draining, e.Phase())

	e.Stop()
	require.Equal(t, Stopped, e.Phase())
	require.False(t, e.Session().Playing())

	// A stopped engine replays from the start
	require.NoError(t, e.Start())
	require.Equal(t, int64(0), e.Session().Frame())

	e.Stop()
	e.Release()
	require.Equal(t, Idle, e.Phase())
	require.Nil(t, e.Model())
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	e := New()
	bad := &audio.Model{SampleRate: 8000, Channels: 2, Frames: 4, Width: audio.WidthFloat32, Float: make([]float32, 3)}
	require.ErrorIs(t, e.Load(bad), ErrInvalidModel)
	require.Equal(t, Idle, e.Phase())
	require.ErrorIs(t, e.Load(nil), ErrInvalidModel)
}

func TestFillLastFrame(t *testing.T) {
	m := rampModel(20, 2)
	e := startedEngine(t, m)
	e.session.frame.Store(m.Frames - 1)

	buf := make([]float32, 10*2)
	for i := range buf {
		buf[i] = 99
	}

	status := e.Fill(buf, 10)
	require.Equal(t, output.Complete, status)
	require.Equal(t, m.Float[38:40], buf[:2])
	require.Equal(t, make([]float32, 18), buf[2:])
	require.Equal(t, m.Frames, e.Session().Frame())
	require.Equal(t, Draining, e.Phase())
}

func TestFillExactEndNeedsOneMoreBuffer(t *testing.T) {
	m := rampModel(8, 1)
	e := startedEngine(t, m)

	buf := make([]float32, 8)
	require.Equal(t, output.Continue, e.Fill(buf, 8))
	require.Equal(t, m.Float, buf)

	require.Equal(t, output.Complete, e.Fill(buf, 8))
	require.Equal(t, make([]float32, 8), buf)
}

func TestFillStopYieldsSilenceWithoutCompletion(t *testing.T) {
	m := rampModel(100, 1)
	e := startedEngine(t, m)

	buf := make([]float32, 10)
	require.Equal(t, output.Continue, e.Fill(buf, 10))

	e.Session().RequestStop()
	for i := range buf {
		buf[i] = 1
	}
	require.Equal(t, output.Continue, e.Fill(buf, 10))
	require.Equal(t, make([]float32, 10), buf)
	require.Equal(t, int64(10), e.Session().Frame())
}

func TestFillInt32Model(t *testing.T) {
	m := audio.NewInt32Model(8000, 1, []int32{math.MaxInt32, 0, math.MinInt32})
	e := startedEngine(t, m)

	buf := make([]float32, 4)
	require.Equal(t, output.Complete, e.Fill(buf, 4))
	require.Equal(t, []float32{1, 0, -1, 0}, buf)
}

func TestFillClampsFloatModel(t *testing.T) {
	m := audio.NewFloat32Model(8000, 1, []float32{1.5, -2})
	e := startedEngine(t, m)

	buf := make([]float32, 2)
	e.Fill(buf, 2)
	require.Equal(t, []float32{1, -1}, buf)
}

func TestFillShortBuffer(t *testing.T) {
	m := rampModel(10, 2)
	e := startedEngine(t, m)

	// Only room for two frames although four were requested
	buf := make([]float32, 5)
	require.Equal(t, output.Continue, e.Fill(buf, 4))
	require.Equal(t, int64(2), e.Session().Frame())
	require.Equal(t, m.Float[:4], buf[:4])
}

func TestFillOutsidePlaying(t *testing.T) {
	buf := []float32{1, 1}

	e := New()
	require.Equal(t, output.Complete, e.Fill(buf, 2))
	require.Equal(t, []float32{0, 0}, buf)

	require.NoError(t, e.Load(rampModel(4, 1)))
	buf[0] = 1
	require.Equal(t, output.Continue, e.Fill(buf, 2))
	require.Equal(t, []float32{0, 0}, buf)
	require.Equal(t, int64(0), e.Session().Frame())
}

func TestFillGlitchZeroIntensityIsIdentity(t *testing.T) {
	m := rampModel(64, 2)
	e := startedEngine(t, m)

	s := e.Session()
	s.SetGlitch(true)
	s.SetIntensity(1)
	buf := make([]float32, 32*2)
	e.Fill(buf, 32)

	s.SetIntensity(0)
	e.Fill(buf, 32)
	require.Equal(t, m.Float[64:], buf)
}

func TestFillGlitchDeterministic(t *testing.T) {
	run := func() []float32 {
		e := startedEngine(t, rampModel(256, 2))
		e.Session().SetGlitch(true)
		e.Session().SetIntensity(1)
		buf := make([]float32, 256*2)
		e.Fill(buf, 256)
		return buf
	}

	first := run()
	require.Equal(t, first, run())
	require.NotEqual(t, rampModel(256, 2).Float, first)
}

func TestFillDoesNotAllocate(t *testing.T) {
	e := startedEngine(t, audio.Tone([]float64{440}, 8000, 2, 1<<20, 0.5))
	e.Session().SetGlitch(true)
	e.Session().SetIntensity(0.5)
	buf := make([]float32, 256*2)

	allocs := testing.AllocsPerRun(100, func() {
		e.Fill(buf, 256)
	})
	require.Zero(t, allocs)
}

func TestProgress(t *testing.T) {
	m := rampModel(10, 1)
	e := startedEngine(t, m)
	e.Fill(make([]float32, 3), 3)

	frame, total := e.Progress()
	require.Equal(t, int64(3), frame)
	require.Equal(t, int64(10), total)
}

func TestSessionIntensityClamp(t *testing.T) {
	var s Session
	s.SetIntensity(2)
	require.Equal(t, float32(1), s.Intensity())
	s.SetIntensity(-1)
	require.Equal(t, float32(0), s.Intensity())
	s.SetIntensity(float32(math.NaN()))
	require.Equal(t, float32(0), s.Intensity())
	s.SetIntensity(5.0 / 9)
	require.InDelta(t, 0.5555, s.Intensity(), 0.001)
}

func TestSessionToggleAndSnapshot(t *testing.T) {
	var s Session
	require.True(t, s.ToggleGlitch())
	require.False(t, s.ToggleGlitch())
	s.SetGlitch(true)
	s.SetIntensity(0.5)
	s.RequestStop()

	snap := s.Snapshot()
	require.Equal(t, Snapshot{StopRequested: true, Glitch: true, Intensity: 0.5}, snap)

	s.Reset()
	require.Equal(t, Snapshot{}, s.Snapshot())
}
