// ABOUTME: Control input sources
// ABOUTME: Readline, plain reader and idle sources that can be closed mid-read
package control

import (
	"bufio"
	"errors"
	"io"
	"sync"

	"github.com/chzyer/readline"
)

type lineResult struct {
	line string
	err  error
}

// feeder moves a blocking read onto its own goroutine so ReadLine can be
// abandoned by Close. A read blocked in the underlying source is leaked until
// that source returns.
type feeder struct {
	read      func() (string, error)
	lines     chan lineResult
	closed    chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

func newFeeder(read func() (string, error)) *feeder {
	return &feeder{
		read:   read,
		lines:  make(chan lineResult),
		closed: make(chan struct{}),
	}
}

func (f *feeder) loop() {
	for {
		line, err := f.read()
		select {
		case f.lines <- lineResult{line: line, err: err}:
		case <-f.closed:
			return
		}
		if err != nil {
			return
		}
	}
}

// ReadLine returns the next line or ErrClosed
func (f *feeder) ReadLine() (string, error) {
	f.startOnce.Do(func() { go f.loop() })

	select {
	case <-f.closed:
		return "", ErrClosed
	default:
	}
	select {
	case r := <-f.lines:
		return r.line, r.err
	case <-f.closed:
		return "", ErrClosed
	}
}

func (f *feeder) close() {
	f.closeOnce.Do(func() { close(f.closed) })
}

// ReaderSource reads commands line by line from any reader, such as a pipe
type ReaderSource struct {
	*feeder
}

// NewReaderSource wraps r
func NewReaderSource(r io.Reader) *ReaderSource {
	sc := bufio.NewScanner(r)
	return &ReaderSource{feeder: newFeeder(func() (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	})}
}

// Run feeds the controller until input ends or the source is closed
func (s *ReaderSource) Run(c *Controller) error {
	return c.Run(s.feeder)
}

// Close unblocks Run
func (s *ReaderSource) Close() error {
	s.feeder.close()
	return nil
}

// ReadlineSource reads commands from the terminal with line editing
type ReadlineSource struct {
	rl *readline.Instance
	*feeder
}

// NewReadlineSource opens the terminal with the given prompt
func NewReadlineSource(prompt string) (*ReadlineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "q",
	})
	if err != nil {
		return nil, err
	}

	return &ReadlineSource{
		rl: rl,
		feeder: newFeeder(func() (string, error) {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				return "", ErrInterrupted
			}
			return line, err
		}),
	}, nil
}

// Stdout writes above the prompt without corrupting it
func (s *ReadlineSource) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run feeds the controller until quit, interrupt or Close
func (s *ReadlineSource) Run(c *Controller) error {
	return c.Run(s.feeder)
}

// Close unblocks Run and restores the terminal
func (s *ReadlineSource) Close() error {
	s.feeder.close()
	return s.rl.Close()
}

// IdleSource accepts no input; Run blocks until Close or a stop request
type IdleSource struct {
	closed    chan struct{}
	closeOnce sync.Once
}

// NewIdleSource creates an idle source
func NewIdleSource() *IdleSource {
	return &IdleSource{closed: make(chan struct{})}
}

// Run waits until the source is closed
func (s *IdleSource) Run(c *Controller) error {
	<-s.closed
	return nil
}

// Close unblocks Run
func (s *IdleSource) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
