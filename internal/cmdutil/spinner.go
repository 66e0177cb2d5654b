package cmdutil

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tman-org/tman/internal/stringutil"
)

// Spinner renders a braille spinner next to a message while a long
// operation runs on another goroutine.
type Spinner struct {
	out     io.Writer
	message string

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{out: out, message: message, done: make(chan struct{})}
}

// Start begins the animation. Stop must be called exactly once afterwards.
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", stringutil.SpinnerFrames[frame], s.message)
				s.mu.Unlock()
				frame = (frame + 1) % len(stringutil.SpinnerFrames)
			}
		}
	}()
}

// Stop ends the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+2))
}
