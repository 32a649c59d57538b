// ABOUTME: Play command
// ABOUTME: Loads a container and plays it with line, TUI or no input controls
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/hmicap/hmicap-go/internal/ui"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/hmicap/hmicap-go/pkg/container"
	"github.com/hmicap/hmicap-go/pkg/control"
	"github.com/hmicap/hmicap-go/pkg/hmicap"
	"github.com/spf13/cobra"
)

// silenceProbe is how many leading samples the silence check inspects
const silenceProbe = 1000

func (a *app) playCommand() *cobra.Command {
	var noInput bool

	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play an HMICAP or HMICA file with live glitch controls",
		Long: `Play a container file. Without a file argument the path is prompted for.

While playing, type a command and press Enter:
  g     toggle glitch on/off
  0-9   set glitch intensity
  q     quit
  ?     help`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlay(cmd, args, noInput)
		},
	}

	f := cmd.Flags()
	f.String("backend", "", "audio output ("+strings.Join(output.Backends(), ", ")+")")
	f.Int("frames", 0, "frames per audio callback")
	f.Uint64("seed", 0, "glitch seed, 0 for random")
	f.Bool("glitch", false, "start with glitch enabled")
	f.Float32("intensity", 0, "initial glitch intensity (0-1)")
	f.Int("volume", 0, "software volume (0-100)")
	f.Bool("tui", false, "show the full-screen player")
	f.BoolVar(&noInput, "no-input", false, "ignore keyboard input and play to the end")

	bindFlag(f, "backend", "backend")
	bindFlag(f, "frames", "frames_per_buffer")
	bindFlag(f, "seed", "glitch.seed")
	bindFlag(f, "glitch", "glitch.enabled")
	bindFlag(f, "intensity", "glitch.intensity")
	bindFlag(f, "volume", "volume")
	bindFlag(f, "tui", "tui")
	return cmd
}

func (a *app) runPlay(cmd *cobra.Command, args []string, noInput bool) error {
	out := cmd.OutOrStdout()

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		var err error
		if path, err = promptPath(); err != nil {
			return err
		}
	}

	onProgress := hmicap.LinePrinter(out)
	player, err := hmicap.NewPlayer(hmicap.PlayerConfig{
		Backend:          a.cfg.Backend,
		FramesPerBuffer:  a.cfg.FramesPerBuffer,
		ProgressInterval: a.cfg.ProgressInterval,
		Seed:             a.cfg.Glitch.Seed,
		Glitch:           a.cfg.Glitch.Enabled,
		Intensity:        a.cfg.Glitch.Intensity,
		Volume:           a.cfg.Volume,
		Out:              out,
		OnProgress: func(p hmicap.Progress) {
			onProgress(p)
		},
	})
	if err != nil {
		return err
	}

	start := time.Now()
	if err := player.Load(path); err != nil {
		return err
	}
	loadTime := time.Since(start)

	info, err := container.ModelInfo(path, player.Engine().Model())
	if err != nil {
		return err
	}
	printHeader(out, info)
	fmt.Fprintf(out, "  ⚡ Loaded in %v\n", loadTime.Round(time.Millisecond))
	if player.Engine().Model().IsSilent(silenceProbe) {
		fmt.Fprintln(out, "  ⚠️  Warning: the first samples are silent")
	}

	var src control.Source
	switch {
	case a.cfg.TUI:
		a.logToFileOnly()
		tuiSrc := ui.NewSource(ui.TrackInfo{
			Path:       path,
			Format:     info.Format,
			SampleRate: info.SampleRate,
			Channels:   info.Channels,
			Duration:   info.Duration(),
			Seed:       player.Engine().Seed(),
		}, player)
		onProgress = tuiSrc.Progress
		src = tuiSrc
	case noInput:
		src = control.NewIdleSource()
	case readline.DefaultIsTerminal():
		if src, err = control.NewReadlineSource(">> "); err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
	default:
		src = control.NewReaderSource(cmd.InOrStdin())
	}

	fmt.Fprintf(out, "\n🎵 Now playing on %s (%s)\n", a.cfg.Backend, channelLabel(info.Channels))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	final, err := player.Play(ctx, src)
	fmt.Fprintf(out, "\n\n✅ Playback stopped at %.1fs of %.1fs\n",
		final.Elapsed().Seconds(), final.Duration().Seconds())
	fmt.Fprintf(out, "💀 Glitch seed: %d (replay with --seed %d)\n", player.Engine().Seed(), player.Engine().Seed())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// promptPath asks for a file path when none was given on the command line
func promptPath() (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Enter HMICAP/HMICA file path: ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", fmt.Errorf("no file given: %w", err)
	}
	// Terminals quote dropped paths
	path := strings.Trim(strings.TrimSpace(line), `"'`)
	if path == "" {
		return "", errors.New("no file given")
	}
	return path, nil
}

func printHeader(w io.Writer, info container.Info) {
	fmt.Fprintf(w, "📂 %s (%s)\n", info.Path, info.Format)
	fmt.Fprintf(w, "  🎵 Sample rate: %d Hz\n", info.SampleRate)
	fmt.Fprintf(w, "  🎧 Channels: %d\n", info.Channels)
	fmt.Fprintf(w, "  💎 Samples: %s\n", info.Samples)
	fmt.Fprintf(w, "  📊 Total samples: %d per channel\n", info.Frames)
	fmt.Fprintf(w, "  ⏱️  Duration: %.2f seconds\n", info.Duration().Seconds())
}

func channelLabel(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
