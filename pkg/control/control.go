// ABOUTME: Playback control commands
// ABOUTME: Parses line commands and applies them to the shared session
package control

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hmicap/hmicap-go/pkg/engine"
)

var (
	// ErrClosed is returned by a LineReader after its source was closed
	ErrClosed = errors.New("control source closed")
	// ErrInterrupted is returned by a LineReader when the user pressed Ctrl-C
	ErrInterrupted = errors.New("interrupted")
)

// Kind classifies a parsed command
type Kind int

const (
	None Kind = iota
	ToggleGlitch
	SetIntensity
	Quit
	Help
	Unknown
)

// Command is one parsed input line
type Command struct {
	Kind      Kind
	Intensity float32
	Input     string
}

// Parse classifies a line by its first non-space character.
// Digits map to intensity digit/9.
func Parse(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: None}
	}

	cmd := Command{Input: line}
	switch c := line[0]; {
	case c == 'g' || c == 'G':
		cmd.Kind = ToggleGlitch
	case c >= '0' && c <= '9':
		cmd.Kind = SetIntensity
		cmd.Intensity = float32(c-'0') / 9
	case c == 'q' || c == 'Q':
		cmd.Kind = Quit
	case c == '?':
		cmd.Kind = Help
	default:
		cmd.Kind = Unknown
	}
	return cmd
}

// Result is what applying a command produced
type Result struct {
	Message string
	Quit    bool
}

// LineReader yields input lines. It returns ErrClosed once its source is
// closed, ErrInterrupted on Ctrl-C and io.EOF at end of input.
type LineReader interface {
	ReadLine() (string, error)
}

// Source drives a Controller from some input
type Source interface {
	Run(c *Controller) error
	Close() error
}

// Controller applies commands to a playback session
type Controller struct {
	session *engine.Session
	out     io.Writer
}

// NewController creates a controller writing feedback to out
func NewController(session *engine.Session, out io.Writer) *Controller {
	if out == nil {
		out = io.Discard
	}
	return &Controller{session: session, out: out}
}

// Session returns the controlled session
func (c *Controller) Session() *engine.Session {
	return c.session
}

// Apply executes cmd against the session
func (c *Controller) Apply(cmd Command) Result {
	switch cmd.Kind {
	case None:
		return Result{}
	case ToggleGlitch:
		if c.session.ToggleGlitch() {
			return Result{Message: "Glitch enabled"}
		}
		return Result{Message: "Glitch disabled"}
	case SetIntensity:
		c.session.SetIntensity(cmd.Intensity)
		return Result{Message: fmt.Sprintf("Glitch intensity set to %d%% (%s)",
			int(cmd.Intensity*100), IntensityLabel(cmd.Intensity))}
	case Quit:
		c.session.RequestStop()
		return Result{Message: "Stopping playback...", Quit: true}
	case Help:
		return Result{Message: HelpText}
	default:
		return Result{Message: "Unknown command. Press '?' for help."}
	}
}

// Run prints the help text and applies lines from r until a quit command,
// a stop requested elsewhere, end of input or the reader being closed.
// Ctrl-C counts as quit.
func (c *Controller) Run(r LineReader) error {
	fmt.Fprintln(c.out, HelpText)

	for !c.session.StopRequested() {
		line, err := r.ReadLine()
		switch {
		case errors.Is(err, ErrInterrupted):
			c.session.RequestStop()
			return nil
		case errors.Is(err, ErrClosed), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read command: %w", err)
		}

		if c.session.StopRequested() {
			return nil
		}
		res := c.Apply(Parse(line))
		if res.Message != "" {
			fmt.Fprintln(c.out, res.Message)
		}
		if res.Quit {
			return nil
		}
	}
	return nil
}

// HelpText lists the commands
const HelpText = `Glitch controls:
  g     - Toggle glitch on/off
  0-9   - Set glitch intensity (0=none, 9=maximum chaos)
  q     - Quit
  ?     - Show this help`

// IntensityLabel describes an intensity in words
func IntensityLabel(v float32) string {
	switch {
	case v <= 0:
		return "clean"
	case v < 0.3:
		return "subtle"
	case v < 0.6:
		return "moderate"
	case v < 0.9:
		return "intense"
	default:
		return "maximum chaos"
	}
}
