// ABOUTME: Tone command
// ABOUTME: Writes a sine test tone straight into a container
package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/hmicap/hmicap-go/pkg/container"
	"github.com/spf13/cobra"
)

type toneOptions struct {
	freqs     []float64
	duration  time.Duration
	rate      int
	channels  int
	amplitude float64
	float     bool
}

func (a *app) toneCommand() *cobra.Command {
	var opts toneOptions

	cmd := &cobra.Command{
		Use:   "tone <output>",
		Short: "Write a test tone container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTone(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&opts.freqs, "freq", []float64{audio.DefaultToneFrequency}, "frequencies in Hz, mixed evenly")
	f.DurationVar(&opts.duration, "duration", 3*time.Second, "tone length")
	f.IntVar(&opts.rate, "rate", 48000, "sample rate")
	f.IntVar(&opts.channels, "channels", 2, "channel count")
	f.Float64Var(&opts.amplitude, "amplitude", 0.5, "peak amplitude (0-1)")
	f.BoolVar(&opts.float, "float", false, "store float32 samples instead of int32")
	f.Int("level", 0, "zstd compression level (1-22)")
	bindFlag(f, "level", "compression_level")
	return cmd
}

func (a *app) runTone(cmd *cobra.Command, path string, opts toneOptions) error {
	if opts.rate <= 0 || opts.channels <= 0 {
		return fmt.Errorf("invalid tone format: %dHz, %d channels", opts.rate, opts.channels)
	}
	if opts.duration <= 0 {
		return fmt.Errorf("invalid tone duration: %v", opts.duration)
	}
	for _, f := range opts.freqs {
		if f <= 0 || f >= float64(opts.rate)/2 {
			return fmt.Errorf("frequency %vHz must be between 0 and %dHz", f, opts.rate/2)
		}
	}

	frames := int64(opts.duration.Seconds() * float64(opts.rate))
	m := audio.Tone(opts.freqs, opts.rate, opts.channels, frames, opts.amplitude)
	if !opts.float {
		m = m.ToInt32()
	}

	if err := container.WriteFile(path, m, container.WithLevel(a.cfg.CompressionLevel)); err != nil {
		return err
	}
	log.Printf("Wrote %v tone %v to %s", opts.duration, opts.freqs, path)

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s: %v Hz, %v, %dHz %d channels (%s)\n",
		path, opts.freqs, opts.duration, opts.rate, opts.channels, m.Width)
	return nil
}
