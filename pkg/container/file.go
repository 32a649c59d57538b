// ABOUTME: Container kinds and file helpers
// ABOUTME: Picks a codec by extension and reads or writes whole container files
package container

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/klauspost/compress/zstd"
)

// Kind identifies one of the four container encodings
type Kind int

const (
	KindBinary Kind = iota + 1
	KindCompressed
	KindText
	KindCompressedText
)

var kindExt = map[Kind]string{
	KindBinary:         ".hmicap",
	KindCompressed:     ".hmicap7",
	KindText:           ".hmica",
	KindCompressedText: ".hmica7",
}

// Kinds lists every container kind in a stable order
func Kinds() []Kind {
	return []Kind{KindBinary, KindCompressed, KindText, KindCompressedText}
}

// Ext returns the file extension for k, including the dot
func (k Kind) Ext() string {
	return kindExt[k]
}

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "hmicap"
	case KindCompressed:
		return "hmicap7"
	case KindText:
		return "hmica"
	case KindCompressedText:
		return "hmica7"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Compressed reports whether k wraps its payload in zstd
func (k Kind) Compressed() bool {
	return k == KindCompressed || k == KindCompressedText
}

// ParseKind accepts a kind name with or without a leading dot
func ParseKind(s string) (Kind, error) {
	name := strings.TrimPrefix(strings.ToLower(s), ".")
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown container kind: %q", s)
}

// KindFromPath picks the container kind from a file extension
func KindFromPath(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for k, e := range kindExt {
		if e == ext {
			return k, true
		}
	}
	return 0, false
}

// Encode renders m in the given kind
func Encode(kind Kind, m *audio.Model, opts ...Option) ([]byte, error) {
	switch kind {
	case KindBinary:
		return EncodeBinary(m)
	case KindCompressed:
		return EncodeCompressed(m, opts...)
	case KindText:
		return EncodeText(m)
	case KindCompressedText:
		return EncodeCompressedText(m, opts...)
	default:
		return nil, fmt.Errorf("unknown container kind: %d", int(kind))
	}
}

// Decode parses data as the given kind
func Decode(kind Kind, data []byte) (*audio.Model, error) {
	switch kind {
	case KindBinary:
		return DecodeBinary(data)
	case KindCompressed:
		return DecodeCompressed(data)
	case KindText:
		return DecodeText(data)
	case KindCompressedText:
		return DecodeCompressedText(data)
	default:
		return nil, fmt.Errorf("unknown container kind: %d", int(kind))
	}
}

// ReadFile loads a container, choosing the codec from the extension
func ReadFile(path string) (*audio.Model, error) {
	kind, ok := KindFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: unrecognised container extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, openErr(path, err)
	}
	m, err := Decode(kind, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile encodes m by the extension of path and writes it
func WriteFile(path string, m *audio.Model, opts ...Option) error {
	kind, ok := KindFromPath(path)
	if !ok {
		return fmt.Errorf("%s: unrecognised container extension", path)
	}
	data, err := Encode(kind, m, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Info is the metadata of a container file
type Info struct {
	Path       string      `json:"path" yaml:"path"`
	Kind       Kind        `json:"-" yaml:"-"`
	Format     string      `json:"format" yaml:"format"`
	SampleRate int         `json:"sample_rate" yaml:"sample_rate"`
	Channels   int         `json:"channels" yaml:"channels"`
	Frames     int64       `json:"frames" yaml:"frames"`
	Width      audio.Width `json:"-" yaml:"-"`
	Samples    string      `json:"samples" yaml:"samples"`
	FileSize   int64       `json:"file_size" yaml:"file_size"`
}

// Duration is the playing time the header describes
func (i Info) Duration() time.Duration {
	if i.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(i.Frames) / float64(i.SampleRate) * float64(time.Second))
}

// ModelInfo describes a container that was already loaded from path, so text
// containers are not parsed a second time
func ModelInfo(path string, m *audio.Model) (Info, error) {
	kind, ok := KindFromPath(path)
	if !ok {
		return Info{}, fmt.Errorf("%s: unrecognised container extension", path)
	}
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, openErr(path, err)
	}
	return Info{
		Path:       path,
		Kind:       kind,
		Format:     kind.String(),
		SampleRate: m.SampleRate,
		Channels:   m.Channels,
		Frames:     m.Frames,
		Width:      m.Width,
		Samples:    m.Width.String(),
		FileSize:   st.Size(),
	}, nil
}

// ReadHeader reports container metadata. Binary kinds only read the header;
// text kinds are parsed in full.
func ReadHeader(path string) (Info, error) {
	kind, ok := KindFromPath(path)
	if !ok {
		return Info{}, fmt.Errorf("%s: unrecognised container extension", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Info{}, openErr(path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	info := Info{Path: path, Kind: kind, Format: kind.String(), FileSize: st.Size()}

	var r io.Reader = f
	if kind.Compressed() {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return Info{}, fmt.Errorf("%s: %w: %v", path, ErrCorruptContainer, err)
		}
		defer dec.Close()
		r = dec
	}

	switch kind {
	case KindBinary, KindCompressed:
		buf := make([]byte, HeaderSize)
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			if kind.Compressed() {
				return Info{}, fmt.Errorf("%s: %w: %v", path, ErrCorruptContainer, err)
			}
			return Info{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		h, err := ParseHeader(buf[:n])
		if err != nil {
			return Info{}, fmt.Errorf("%s: %w", path, err)
		}
		info.SampleRate = int(h.SampleRate)
		info.Channels = int(h.Channels)
		info.Frames = int64(h.Frames)
		info.Width = h.Width()
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return Info{}, fmt.Errorf("%s: %w: %v", path, ErrCorruptContainer, err)
		}
		m, err := DecodeText(data)
		if err != nil {
			return Info{}, fmt.Errorf("%s: %w", path, err)
		}
		info.SampleRate = m.SampleRate
		info.Channels = m.Channels
		info.Frames = m.Frames
		info.Width = m.Width
	}
	info.Samples = info.Width.String()
	return info, nil
}

func openErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrFileNotFound)
	}
	return fmt.Errorf("failed to open %s: %w", path, err)
}
