package container

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func modelGen(width audio.Width, minFrames int) *rapid.Generator[*audio.Model] {
	return rapid.Custom(func(t *rapid.T) *audio.Model {
		channels := rapid.IntRange(1, 4).Draw(t, "channels")
		frames := rapid.IntRange(minFrames, 64).Draw(t, "frames")
		rate := rapid.IntRange(1, 192000).Draw(t, "rate")
		n := channels * frames
		if width == audio.WidthInt32 {
			samples := rapid.SliceOfN(rapid.Int32(), n, n).Draw(t, "samples")
			return audio.NewInt32Model(rate, channels, samples)
		}
		// Bias towards repeated values so the RLE paths get exercised
		value := rapid.OneOf(
			rapid.Float32Range(-1, 1),
			rapid.SampledFrom([]float32{0, 0.5, -0.25, 1}),
		)
		samples := rapid.SliceOfN(value, n, n).Draw(t, "samples")
		return audio.NewFloat32Model(rate, channels, samples)
	})
}

func requireSameModel(t require.TestingT, want, got *audio.Model) {
	require.NotNil(t, got)
	require.Equal(t, want.SampleRate, got.SampleRate)
	require.Equal(t, want.Channels, got.Channels)
	require.Equal(t, want.Frames, got.Frames)
	require.Equal(t, want.Width, got.Width)
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < want.Len(); i++ {
		if want.Width == audio.WidthInt32 {
			require.Equal(t, want.Int[i], got.Int[i], "sample %d", i)
		} else {
			require.True(t, want.Float[i] == got.Float[i], "sample %d: want %v, got %v", i, want.Float[i], got.Float[i])
		}
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, width := range []audio.Width{audio.WidthInt32, audio.WidthFloat32} {
		t.Run(width.String(), func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				m := modelGen(width, 0).Draw(t, "model")
				data, err := EncodeBinary(m)
				require.NoError(t, err)
				require.Len(t, data, HeaderSize+m.Len()*4)

				got, err := DecodeBinary(data)
				require.NoError(t, err)
				requireSameModel(t, m, got)
			})
		})
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.SampledFrom([]audio.Width{audio.WidthInt32, audio.WidthFloat32}).Draw(t, "width")
		m := modelGen(width, 0).Draw(t, "model")
		data, err := EncodeCompressed(m, WithLevel(3))
		require.NoError(t, err)

		got, err := DecodeCompressed(data)
		require.NoError(t, err)
		requireSameModel(t, m, got)
	})
}

func TestCompressedEmptyModel(t *testing.T) {
	m := audio.NewInt32Model(44100, 2, []int32{})
	data, err := EncodeCompressed(m)
	require.NoError(t, err)

	got, err := DecodeCompressed(data)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Frames)
	require.Equal(t, 2, got.Channels)
	require.Equal(t, 0, got.Len())
}

func TestCompressedSmallImagesDeclareSize(t *testing.T) {
	// 40, 48, 200, 520 and 1040 byte binary images
	for _, frames := range []int{0, 1, 20, 60, 125} {
		m := audio.NewInt32Model(8000, 2, make([]int32, frames*2))
		for i := range m.Int {
			m.Int[i] = int32(i * 1000)
		}

		data, err := EncodeCompressed(m)
		require.NoError(t, err, "frames=%d", frames)

		var h zstd.Header
		require.NoError(t, h.Decode(data))
		require.True(t, h.HasFCS, "frames=%d: frame content size missing", frames)
		require.Equal(t, uint64(HeaderSize+frames*2*4), h.FrameContentSize)

		got, err := DecodeCompressed(data)
		require.NoError(t, err, "frames=%d", frames)
		requireSameModel(t, m, got)
	}
}

func TestCompressedTextSmallDocument(t *testing.T) {
	m := audio.NewFloat32Model(8000, 1, []float32{0.5})
	data, err := EncodeCompressedText(m)
	require.NoError(t, err)

	got, err := DecodeCompressedText(data)
	require.NoError(t, err)
	requireSameModel(t, m, got)
}

func TestTextRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := modelGen(audio.WidthFloat32, 1).Draw(t, "model")
		data, err := EncodeText(m)
		require.NoError(t, err)

		got, err := DecodeText(data)
		require.NoError(t, err, "document:\n%s", data)
		requireSameModel(t, m, got)
	})
}

func TestCompressedTextRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := modelGen(audio.WidthFloat32, 1).Draw(t, "model")
		data, err := EncodeCompressedText(m, WithLevel(1))
		require.NoError(t, err)

		got, err := DecodeCompressedText(data)
		require.NoError(t, err)
		requireSameModel(t, m, got)
	})
}

func TestTextRoundTripFromInt32(t *testing.T) {
	m := audio.NewInt32Model(8000, 1, []int32{math.MaxInt32, 0, math.MinInt32, 1 << 30})
	data, err := EncodeText(m)
	require.NoError(t, err)

	got, err := DecodeText(data)
	require.NoError(t, err)
	requireSameModel(t, m.ToFloat32(), got)
}

func TestBinaryDecodeErrors(t *testing.T) {
	m := audio.NewInt32Model(44100, 2, []int32{1, 2, 3, 4})
	good, err := EncodeBinary(m)
	require.NoError(t, err)

	mutate := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrCorruptContainer},
		{"bad magic", mutate(func(b []byte) []byte { copy(b, "NOTMAGIC"); return b }), ErrCorruptContainer},
		{"short header", good[:20], ErrTruncatedData},
		{"missing last sample byte", good[:len(good)-1], ErrTruncatedData},
		{"header only", good[:HeaderSize], ErrTruncatedData},
		{"zero rate", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[8:], 0); return b }), ErrCorruptContainer},
		{"zero channels", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint16(b[12:], 0); return b }), ErrCorruptContainer},
		{"bit depth 16", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint16(b[14:], 16); return b }), ErrCorruptContainer},
		{"huge frame count", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint64(b[16:], math.MaxUint64); return b }), ErrTruncatedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBinary(tt.data)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, got)
		})
	}
}

func TestBinaryIgnoresTrailingBytes(t *testing.T) {
	m := audio.NewFloat32Model(48000, 1, []float32{0.25, -0.5})
	data, err := EncodeBinary(m)
	require.NoError(t, err)

	got, err := DecodeBinary(append(data, 0xde, 0xad))
	require.NoError(t, err)
	requireSameModel(t, m, got)
}

func TestBinaryHeaderLayout(t *testing.T) {
	m := audio.NewFloat32Model(44100, 2, []float32{0, 0})
	data, err := EncodeBinary(m)
	require.NoError(t, err)

	require.Equal(t, MagicFloat32, string(data[:8]))
	require.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[8:]))
	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[12:]))
	require.Equal(t, uint16(32), binary.LittleEndian.Uint16(data[14:]))
	require.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[16:]))
	require.Equal(t, make([]byte, 16), data[24:HeaderSize])
}

func TestDecodeBinaryReplacesNonFinite(t *testing.T) {
	m := audio.NewFloat32Model(8000, 1, []float32{0, 0})
	data, err := EncodeBinary(m)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[HeaderSize:], math.Float32bits(float32(math.NaN())))
	binary.LittleEndian.PutUint32(data[HeaderSize+4:], math.Float32bits(float32(math.Inf(-1))))

	got, err := DecodeBinary(data)
	require.NoError(t, err)
	require.Equal(t, []float32{0, 0}, got.Float)
}

func TestDecodeCompressedErrors(t *testing.T) {
	t.Run("not zstd", func(t *testing.T) {
		_, err := DecodeCompressed([]byte("definitely not a zstd frame"))
		require.ErrorIs(t, err, ErrCorruptContainer)
	})

	t.Run("truncated frame", func(t *testing.T) {
		m := audio.Tone([]float64{440}, 8000, 1, 800, 0.5)
		data, err := EncodeCompressed(m)
		require.NoError(t, err)
		_, err = DecodeCompressed(data[:len(data)/2])
		require.ErrorIs(t, err, ErrCorruptContainer)
	})

	t.Run("wraps truncated image", func(t *testing.T) {
		m := audio.NewInt32Model(8000, 1, []int32{1, 2, 3})
		raw, err := EncodeBinary(m)
		require.NoError(t, err)
		data, err := compress(raw[:len(raw)-2], buildOptions(nil))
		require.NoError(t, err)
		_, err = DecodeCompressed(data)
		require.ErrorIs(t, err, ErrTruncatedData)
	})
}

func TestDecodeTextScenario(t *testing.T) {
	doc := "info{hz=44100; c=2; sam=4}\nC1{0-3=0.5}\nC2{0=0.1,1=0.2,2-3=0.0}\n"

	m, err := DecodeText([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 44100, m.SampleRate)
	require.Equal(t, 2, m.Channels)
	require.Equal(t, int64(4), m.Frames)
	require.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, m.Channel(0))
	require.Equal(t, []float32{0.1, 0.2, 0, 0}, m.Channel(1))
}

func TestDecodeTextCursor(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []float32
	}{
		{"literals", "0.1,0.2,0.3", []float32{0.1, 0.2, 0.3, 0, 0}},
		{"literal after range", "1-2=0.5,0.25", []float32{0, 0.5, 0.5, 0.25, 0}},
		{"range ignores cursor", "0.1,0.1,0.1,0-0=0.9,0.2", []float32{0.9, 0.2, 0.1, 0, 0}},
		{"range clamped", "3-100=1", []float32{0, 0, 0, 1, 1}},
		{"range past end", "7-9=1", []float32{0, 0, 0, 0, 0}},
		{"literals past end", "1,1,1,1,1,1,1", []float32{1, 1, 1, 1, 1}},
		{"point", "4=0.5,2=-0.5", []float32{0, 0, -0.5, 0, 0.5}},
		{"whitespace", " 0.5 ,\n\t-0.5 , 2 - 3 = 0.75 ", []float32{0.5, -0.5, 0.75, 0.75, 0}},
		{"empty tokens", ",,0.5,,", []float32{0.5, 0, 0, 0, 0}},
		{"empty block", "", []float32{0, 0, 0, 0, 0}},
		{"exponent literal", "1e-05", []float32{1e-05, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "info{\nhz=8000\nc=1\nsam=5\n}\nC1{" + tt.body + "}"
			m, err := DecodeText([]byte(doc))
			require.NoError(t, err)
			require.Equal(t, tt.want, m.Float)
		})
	}
}

func TestDecodeTextErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no info", "C1{0.5}", ErrInvalidHeader},
		{"unclosed info", "info{hz=8000;c=1;sam=1", ErrInvalidHeader},
		{"missing sam", "info{hz=8000;c=1}C1{}", ErrInvalidHeader},
		{"zero hz", "info{hz=0;c=1;sam=1}C1{}", ErrInvalidHeader},
		{"zero channels", "info{hz=8000;c=0;sam=1}", ErrInvalidHeader},
		{"zero frames", "info{hz=8000;c=1;sam=0}C1{}", ErrInvalidHeader},
		{"unparseable", "info{hz=fast;c=1;sam=1}C1{}", ErrInvalidHeader},
		{"negative", "info{hz=8000;c=1;sam=-1}C1{}", ErrInvalidHeader},
		{"too large", "info{hz=8000;c=65535;sam=9223372036854775807}", ErrInvalidHeader},
		{"missing channel", "info{hz=8000;c=2;sam=1}C1{0.5}", ErrChannelNotFound},
		{"unclosed channel", "info{hz=8000;c=2;sam=1}C1{0.5}C2{0.5", ErrChannelNotFound},
		{"channel 10 is not channel 1", "info{hz=8000;c=1;sam=1}C10{0.5}", ErrChannelNotFound},
		{"bad literal", "info{hz=8000;c=1;sam=1}C1{loud}", ErrMalformedToken},
		{"bad range start", "info{hz=8000;c=1;sam=2}C1{x-1=0.5}", ErrMalformedToken},
		{"bad range end", "info{hz=8000;c=1;sam=2}C1{0-=0.5}", ErrMalformedToken},
		{"negative index", "info{hz=8000;c=1;sam=2}C1{-1-1=0.5}", ErrMalformedToken},
		{"reversed range", "info{hz=8000;c=1;sam=2}C1{1-0=0.5}", ErrMalformedToken},
		{"bad value", "info{hz=8000;c=1;sam=2}C1{0-1=}", ErrMalformedToken},
		{"nan", "info{hz=8000;c=1;sam=1}C1{NaN}", ErrMalformedToken},
		{"overflow", "info{hz=8000;c=1;sam=1}C1{1e40}", ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeText([]byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, m)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	doc := "info{hz=44100;c=1;sam=2}\nC1{0.5,\n  abc}"

	_, err := DecodeText([]byte(doc))
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	require.ErrorIs(t, err, ErrMalformedToken)
	require.Equal(t, 3, syn.Line)
	require.Equal(t, 3, syn.Column)
	require.Contains(t, err.Error(), "line 3, column 3")
}

func TestEncodeTextRuns(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    string
	}{
		{"long run", []float32{0.5, 0.5, 0.5, 0.5, 0, 0}, "C1{0-3=0.5}"},
		{"short run stays literal", []float32{0.5, 0.5}, "C1{0.5,0.5}"},
		{"leading silence", []float32{0, 0, 0, 0, 0, 0.25}, "C1{0-4=0,0.25}"},
		{"mixed", []float32{0.1, 0.2, 0.2, 0.2, 0.2, 0.2, -1}, "C1{0.1,1-5=0.2,-1}"},
		{"all silent", []float32{0, 0, 0}, "C1{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := audio.NewFloat32Model(8000, 1, tt.samples)
			data, err := EncodeText(m)
			require.NoError(t, err)
			require.Contains(t, string(data), "\n"+tt.want+"\n")

			got, err := DecodeText(data)
			require.NoError(t, err)
			require.Equal(t, tt.samples, got.Float)
		})
	}
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	m := audio.NewFloat32Model(8000, 1, []float32{0.5, float32(math.NaN()), 0})
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := Encode(kind, m)
			require.ErrorIs(t, err, audio.ErrInvalidModel)
		})
	}
}

func TestEncodeTextHeader(t *testing.T) {
	m := audio.NewFloat32Model(22050, 2, []float32{0.5, 0, 0.5, 0})
	data, err := EncodeText(m)
	require.NoError(t, err)
	require.Equal(t, "info{\nhz=22050\nc=2\nsam=2\n}\nC1{0.5,0.5}\nC2{}\n", string(data))
}

func TestEncodeTextRejectsEmpty(t *testing.T) {
	_, err := EncodeText(audio.NewFloat32Model(8000, 1, []float32{}))
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestEncodeRejectsInvalidModel(t *testing.T) {
	bad := &audio.Model{SampleRate: 8000, Channels: 2, Frames: 3, Width: audio.WidthInt32, Int: []int32{1}}
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := Encode(kind, bad)
			require.ErrorIs(t, err, audio.ErrInvalidModel)
		})
	}
}
