// ABOUTME: Container codec package for pre-rendered audio
// ABOUTME: Binary, zstd-compressed and RLE text encodings of an audio.Model
// Package container reads and writes the four pre-rendered audio containers:
//
//   - .hmicap   fixed 40-byte header followed by interleaved 32-bit samples
//   - .hmicap7  the .hmicap image inside one zstd frame
//   - .hmica    UTF-8 run-length encoded text
//   - .hmica7   the .hmica text inside one zstd frame
//
// Binary header layout (little-endian):
//
//	0   magic        "HMICAP01" (int32) or "HMICAF01" (float32)
//	8   sample rate  uint32
//	12  channels     uint16
//	14  bit depth    uint16, always 32
//	16  frames       uint64
//	24  reserved     16 zero bytes
//
// Text layout:
//
//	info{
//	hz=44100
//	c=2
//	sam=4
//	}
//	C1{0-3=0.5}
//	C2{0=0.1,1=0.2}
//
// Channel tokens are replayed in order. A literal writes at the running cursor
// and advances it by one; "i=v" and "a-b=v" write by explicit index and move the
// cursor past the last index. Frames no token reaches stay silent.
//
// Every decoder fails eagerly. Errors wrap one of ErrCorruptContainer,
// ErrTruncatedData, ErrInvalidHeader, ErrChannelNotFound, ErrMalformedToken or
// ErrFileNotFound; text errors are *SyntaxError values carrying a line and column.
package container
