// ABOUTME: RLE text container decoder (HMICA)
// ABOUTME: Replays literal, point and range tokens into zeroed float32 storage
package container

import (
	"math"
	"strconv"
	"strings"

	"github.com/hmicap/hmicap-go/pkg/audio"
)

// maxTextSamples bounds the storage a text header may ask for
const maxTextSamples = 1 << 28

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenPoint
	tokenRange
)

type token struct {
	kind       tokenKind
	start, end int64
	value      float32
}

// DecodeText parses an RLE text container. Storage is allocated zeroed before
// any channel is parsed, so frames no token assigns read as silence.
func DecodeText(data []byte) (*audio.Model, error) {
	blocks := scanBlocks(data)

	info, ok := findBlock(blocks, "info")
	if !ok {
		return nil, syntaxErr(ErrInvalidHeader, Pos{}, "no info block")
	}
	if !info.closed {
		return nil, syntaxErr(ErrInvalidHeader, info.pos, "info block is not closed")
	}

	rate, channels, frames, err := parseInfo(info)
	if err != nil {
		return nil, err
	}
	if frames > maxTextSamples/channels {
		return nil, syntaxErr(ErrInvalidHeader, info.pos, "%d frames x %d channels is too large", frames, channels)
	}

	samples := make([]float32, frames*channels)
	for ch := int64(1); ch <= channels; ch++ {
		name := "C" + strconv.FormatInt(ch, 10)
		b, ok := findBlock(blocks, name)
		if !ok {
			return nil, syntaxErr(ErrChannelNotFound, Pos{}, "no %s block", name)
		}
		if !b.closed {
			return nil, syntaxErr(ErrChannelNotFound, b.pos, "%s block is not closed", name)
		}
		if err := replayChannel(b, samples, ch-1, channels, frames); err != nil {
			return nil, err
		}
	}

	return audio.NewFloat32Model(int(rate), int(channels), samples), nil
}

func parseInfo(b block) (rate, channels, frames int64, err error) {
	seen := map[string]bool{}
	for _, f := range splitFields(b, ";\n") {
		key, value, ok := strings.Cut(f.text, "=")
		if !ok {
			continue
		}
		var dst *int64
		switch key {
		case "hz":
			dst = &rate
		case "c":
			dst = &channels
		case "sam":
			dst = &frames
		default:
			continue
		}
		n, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil || n < 0 {
			return 0, 0, 0, syntaxErr(ErrInvalidHeader, f.pos, "bad value for %s: %q", key, value)
		}
		*dst = n
		seen[key] = true
	}

	for _, key := range []string{"hz", "c", "sam"} {
		if !seen[key] {
			return 0, 0, 0, syntaxErr(ErrInvalidHeader, b.pos, "missing %s", key)
		}
	}
	switch {
	case rate == 0:
		return 0, 0, 0, syntaxErr(ErrInvalidHeader, b.pos, "hz is zero")
	case channels == 0:
		return 0, 0, 0, syntaxErr(ErrInvalidHeader, b.pos, "c is zero")
	case frames == 0:
		return 0, 0, 0, syntaxErr(ErrInvalidHeader, b.pos, "sam is zero")
	case rate > math.MaxInt32:
		return 0, 0, 0, syntaxErr(ErrInvalidHeader, b.pos, "hz %d out of range", rate)
	case channels > math.MaxUint16:
		return 0, 0, 0, syntaxErr(ErrInvalidHeader, b.pos, "c %d out of range", channels)
	}
	return rate, channels, frames, nil
}

// replayChannel applies the tokens of one channel block in document order.
// Indices at or past frames are skipped.
func replayChannel(b block, samples []float32, ch, channels, frames int64) error {
	var cursor int64
	for _, f := range splitFields(b, ",") {
		tok, err := parseToken(f)
		if err != nil {
			return err
		}

		switch tok.kind {
		case tokenLiteral:
			if cursor < frames {
				samples[cursor*channels+ch] = tok.value
			}
			cursor++
		default:
			for i := tok.start; i <= tok.end && i < frames; i++ {
				samples[i*channels+ch] = tok.value
			}
			cursor = tok.end
			if cursor < math.MaxInt64 {
				cursor++
			}
		}
	}
	return nil
}

func parseToken(f field) (token, error) {
	lhs, rhs, hasEq := strings.Cut(f.text, "=")
	if !hasEq {
		v, err := parseValue(f.text)
		if err != nil {
			return token{}, syntaxErr(ErrMalformedToken, f.pos, "%q is not a sample value", f.text)
		}
		return token{kind: tokenLiteral, value: v}, nil
	}

	v, err := parseValue(rhs)
	if err != nil {
		return token{}, syntaxErr(ErrMalformedToken, f.pos, "%q has a bad value", f.text)
	}

	from, to, isRange := strings.Cut(lhs, "-")
	if !isRange {
		idx, err := parseIndex(lhs)
		if err != nil {
			return token{}, syntaxErr(ErrMalformedToken, f.pos, "%q has a bad index", f.text)
		}
		return token{kind: tokenPoint, start: idx, end: idx, value: v}, nil
	}

	start, err := parseIndex(from)
	if err != nil {
		return token{}, syntaxErr(ErrMalformedToken, f.pos, "%q has a bad range start", f.text)
	}
	end, err := parseIndex(to)
	if err != nil {
		return token{}, syntaxErr(ErrMalformedToken, f.pos, "%q has a bad range end", f.text)
	}
	if end < start {
		return token{}, syntaxErr(ErrMalformedToken, f.pos, "%q ends before it starts", f.text)
	}
	return token{kind: tokenRange, start: start, end: end, value: v}, nil
}

func parseIndex(s string) (int64, error) {
	if s == "" || s[0] == '+' {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func parseValue(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return float32(v), nil
}
