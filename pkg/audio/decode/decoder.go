// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for decoding whole source files into a Model
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hmicap/hmicap-go/pkg/audio"
)

// ErrUnsupported is returned for a source format no decoder handles
var ErrUnsupported = errors.New("unsupported audio format")

// Decoder decodes a complete encoded stream into float32 samples in [-1, 1]
type Decoder interface {
	// Decode reads r to the end and returns the decoded model
	Decode(r io.Reader) (*audio.Model, error)

	// Codec names the source format
	Codec() string
}

// Extensions lists the file extensions ForExtension accepts
func Extensions() []string {
	return []string{".mp3", ".flac", ".wav"}
}

// ForExtension picks a decoder by file extension (with the dot)
func ForExtension(ext string) (Decoder, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return MP3{}, nil
	case ".flac":
		return FLAC{}, nil
	case ".wav", ".wave":
		return WAV{}, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupported, ext, strings.Join(Extensions(), ", "))
	}
}

// ForPath picks a decoder by the extension of path
func ForPath(path string) (Decoder, error) {
	return ForExtension(filepath.Ext(path))
}

// File decodes the file at path with the decoder its extension selects
func File(path string) (*audio.Model, error) {
	dec, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return FileWith(path, dec)
}

// FileWith decodes the file at path with dec
func FileWith(path string, dec Decoder) (*audio.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", dec.Codec(), err)
	}
	defer f.Close()

	m, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// finish sanitizes decoded samples and validates the model
func finish(m *audio.Model) (*audio.Model, error) {
	for i, s := range m.Float {
		m.Float[i] = audio.Sanitize(s)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
