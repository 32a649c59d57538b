// ABOUTME: Convert command
// ABOUTME: Turns source audio or any container into any container kind
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/hmicap/hmicap-go/pkg/audio/decode"
	"github.com/hmicap/hmicap-go/pkg/container"
	"github.com/spf13/cobra"
)

// rawExtensions select the headerless PCM decoder
var rawExtensions = []string{".pcm", ".raw"}

type convertOptions struct {
	float    bool
	rate     int
	channels int
	bits     int
}

func (a *app) convertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert audio into an HMICAP or HMICA container",
		Long: `Convert source audio (mp3, flac, wav, raw PCM) or any container into a
container. The output kind follows the output extension (.hmicap, .hmicap7,
.hmica, .hmica7); without an output path the input name is reused with the
extension of --format.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.String("format", "", "output container kind when the output has no known extension")
	f.Int("level", 0, "zstd compression level (1-22)")
	f.BoolVar(&opts.float, "float", false, "store float32 samples instead of int32")
	f.IntVar(&opts.rate, "rate", 48000, "sample rate of raw PCM input")
	f.IntVar(&opts.channels, "channels", 2, "channel count of raw PCM input")
	f.IntVar(&opts.bits, "bits", 16, "bit depth of raw PCM input (16 or 24)")

	bindFlag(f, "format", "convert.format")
	bindFlag(f, "level", "compression_level")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, args []string, opts convertOptions) error {
	out := cmd.OutOrStdout()
	input := args[0]

	output, kind, err := a.outputPath(args)
	if err != nil {
		return err
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return fmt.Errorf("output %s would overwrite the input", output)
	}

	width, err := audio.ParseWidth(a.cfg.Convert.Width)
	if err != nil {
		return err
	}
	if opts.float {
		width = audio.WidthFloat32
	}

	start := time.Now()
	m, err := loadSource(input, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "📂 %s: %dHz, %d channels, %d frames (%.2fs)\n",
		input, m.SampleRate, m.Channels, m.Frames, m.Duration().Seconds())

	if width == audio.WidthFloat32 {
		m = m.ToFloat32()
	} else {
		m = m.ToInt32()
	}

	data, err := container.Encode(kind, m, container.WithLevel(a.cfg.CompressionLevel))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", output, err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	log.Printf("Converted %s to %s (%s, %s) in %v", input, output, kind, m.Width, time.Since(start))

	printSizes(out, output, kind, m, int64(len(data)), fileSize(input))
	return nil
}

// outputPath resolves the output file and its container kind
func (a *app) outputPath(args []string) (string, container.Kind, error) {
	if len(args) == 2 {
		if kind, ok := container.KindFromPath(args[1]); ok {
			return args[1], kind, nil
		}
	}

	kind, err := container.ParseKind(a.cfg.Convert.Format)
	if err != nil {
		return "", 0, err
	}
	if len(args) == 2 {
		return args[1] + kind.Ext(), kind, nil
	}
	base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	return base + kind.Ext(), kind, nil
}

// loadSource reads any container, raw PCM or decodable source file
func loadSource(path string, opts convertOptions) (*audio.Model, error) {
	if _, ok := container.KindFromPath(path); ok {
		return container.ReadFile(path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, raw := range rawExtensions {
		if ext == raw {
			dec, err := decode.NewPCM(audio.Format{
				Codec:      "pcm",
				SampleRate: opts.rate,
				Channels:   opts.channels,
				BitDepth:   opts.bits,
			})
			if err != nil {
				return nil, err
			}
			return decode.FileWith(path, dec)
		}
	}

	m, err := decode.File(path)
	if errors.Is(err, decode.ErrUnsupported) {
		return nil, fmt.Errorf("%w (or a container: .hmicap, .hmicap7, .hmica, .hmica7; raw: %s)",
			err, strings.Join(rawExtensions, ", "))
	}
	return m, err
}

func fileSize(path string) int64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return st.Size()
}

func printSizes(w io.Writer, path string, kind container.Kind, m *audio.Model, written, source int64) {
	const mb = 1024 * 1024
	raw := int64(container.HeaderSize) + int64(m.Len())*4

	fmt.Fprintf(w, "✅ Wrote %s (%s, %s samples)\n", path, kind, m.Width)
	fmt.Fprintf(w, "  📦 Size: %.2f MB (source %.2f MB)\n", float64(written)/mb, float64(source)/mb)
	if written > 0 {
		fmt.Fprintf(w, "  🌀 Ratio: %.2fx of uncompressed %.2f MB\n", float64(raw)/float64(written), float64(raw)/mb)
	}
}
