package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner draws a progress indicator on a terminal until stopped or until
// its context is done. On anything but a terminal it draws nothing.
type Spinner struct {
	message string
	w       io.Writer
	animate bool
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	start   sync.Once
	stop    sync.Once
	mu      sync.Mutex
	width   int
}

// newSpinnerWithContext creates a spinner on stderr that stops when ctx is done.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message, isTerminal(os.Stderr))
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string, animate bool) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		w:       w,
		animate: animate,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start begins the animation. Calling it more than once has no effect.
func (s *Spinner) Start() {
	s.start.Do(func() {
		go s.run()
	})
}

func (s *Spinner) run() {
	defer close(s.stopped)
	if !s.animate {
		<-s.ctx.Done()
		return
	}
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	begin := time.Now()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			elapsed := time.Since(begin).Truncate(time.Second)
			line := fmt.Sprintf("%s %s", styleIconSpinner.Render(frame), styleDim.Render(s.message))
			if elapsed > 0 {
				line += " " + styleDim.Render(elapsed.String())
			}
			s.mu.Lock()
			fmt.Fprint(s.w, "\r"+line)
			s.width = max(s.width, len(s.message)+12)
			s.mu.Unlock()
		}
	}
}

// Stop halts the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.Start()
		s.cancel()
		<-s.stopped
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context is done, either through
// Stop or through its parent.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
