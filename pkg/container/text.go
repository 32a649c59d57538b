// ABOUTME: RLE text container encoder (HMICA)
// ABOUTME: Writes an info block and one run-length encoded block per channel
package container

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hmicap/hmicap-go/pkg/audio"
)

// EncodeText renders m as an RLE text document. A run is written as a range
// token when that is shorter than repeating the literal. Trailing silence in a
// channel is omitted since the decoder zero-fills it.
func EncodeText(m *audio.Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Frames == 0 {
		return nil, fmt.Errorf("%w: text containers cannot hold zero frames", ErrInvalidHeader)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "info{\nhz=%d\nc=%d\nsam=%d\n}\n", m.SampleRate, m.Channels, m.Frames)
	for ch := 0; ch < m.Channels; ch++ {
		b.WriteString("C")
		b.WriteString(strconv.Itoa(ch + 1))
		b.WriteString("{")
		writeChannel(&b, m, ch)
		b.WriteString("}\n")
	}
	return []byte(b.String()), nil
}

func writeChannel(b *strings.Builder, m *audio.Model, ch int) {
	at := func(frame int64) float32 {
		return m.SampleAt(frame*int64(m.Channels) + int64(ch))
	}

	last := m.Frames - 1
	for last >= 0 && at(last) == 0 {
		last--
	}

	first := true
	emit := func(tok string) {
		if !first {
			b.WriteByte(',')
		}
		b.WriteString(tok)
		first = false
	}

	for i := int64(0); i <= last; {
		v := at(i)
		j := i
		for j < last && at(j+1) == v {
			j++
		}

		lit := formatValue(v)
		n := j - i + 1
		rng := strconv.FormatInt(i, 10) + "-" + strconv.FormatInt(j, 10) + "=" + lit
		if n > 1 && int64(len(rng)) < n*int64(len(lit)+1)-1 {
			emit(rng)
		} else {
			for k := int64(0); k < n; k++ {
				emit(lit)
			}
		}
		i = j + 1
	}
}

// formatValue writes the shortest text that parses back to the same float32
func formatValue(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
