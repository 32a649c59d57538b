// ABOUTME: Zstd-compressed container codecs (HMICAP7, HMICA7)
// ABOUTME: One self-describing zstd frame over the whole uncompressed image
package container

import (
	"fmt"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultCompressionLevel is the zstd level used when none is given
	DefaultCompressionLevel = 19

	// frames declaring more than this are decoded without preallocating
	maxPrealloc = 1 << 30

	// images below this size are forced into a single segment frame
	singleSegmentLimit = 1 << 10
)

type options struct {
	level int
}

// Option configures the encoders
type Option func(*options)

// WithLevel sets the zstd compression level (1-22). Out of range values fall
// back to the nearest supported encoder speed.
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

func buildOptions(opts []Option) options {
	o := options{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EncodeCompressed compresses the binary image of m as a single zstd frame
func EncodeCompressed(m *audio.Model, opts ...Option) ([]byte, error) {
	raw, err := EncodeBinary(m)
	if err != nil {
		return nil, err
	}
	return compress(raw, buildOptions(opts))
}

// DecodeCompressed decompresses a single zstd frame and decodes the binary image inside
func DecodeCompressed(data []byte) (*audio.Model, error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, err
	}
	return DecodeBinary(raw)
}

// EncodeCompressedText compresses the RLE text form of m
func EncodeCompressedText(m *audio.Model, opts ...Option) ([]byte, error) {
	text, err := EncodeText(m)
	if err != nil {
		return nil, err
	}
	return compress(text, buildOptions(opts))
}

// DecodeCompressedText decompresses and parses an RLE text container
func DecodeCompressedText(data []byte) (*audio.Model, error) {
	text, err := decompress(data)
	if err != nil {
		return nil, err
	}
	return DecodeText(text)
}

func compress(src []byte, o options) ([]byte, error) {
	eopts := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(o.level)),
		zstd.WithEncoderConcurrency(1),
	}
	// EncodeAll leaves the content size out of multi-segment frames under
	// 256 bytes. Single segment frames always carry it.
	if len(src) < singleSegmentLimit {
		eopts = append(eopts, zstd.WithSingleSegment(true))
	}
	enc, err := zstd.NewWriter(nil, eopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

func decompress(data []byte) ([]byte, error) {
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: not a zstd frame: %v", ErrCorruptContainer, err)
	}
	if h.Skippable {
		return nil, fmt.Errorf("%w: skippable zstd frame", ErrCorruptContainer)
	}
	if !h.HasFCS {
		return nil, fmt.Errorf("%w: decompressed size unknown", ErrCorruptContainer)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	var dst []byte
	if h.FrameContentSize <= maxPrealloc {
		dst = make([]byte, 0, h.FrameContentSize)
	}
	out, err := dec.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: decompression failed: %v", ErrCorruptContainer, err)
	}
	if uint64(len(out)) != h.FrameContentSize {
		return nil, fmt.Errorf("%w: frame declared %d bytes, got %d", ErrCorruptContainer, h.FrameContentSize, len(out))
	}
	return out, nil
}
