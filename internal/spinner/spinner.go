// Package spinner renders a minimal progress indicator on stderr while
// the risk query is in flight. It stays silent when stderr is not a
// terminal so CI logs and pipes are never polluted.
package spinner

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a single-owner progress indicator. Start and Stop are safe
// to call from the one component that owns it; Stop is idempotent and
// must be called before anything else writes to stderr.
type Spinner struct {
	mu      sync.Mutex
	message string
	done    chan struct{}
	stopped bool
	enabled bool
}

// New creates a spinner with the given message. The spinner only ever
// animates when enabled is true and stderr is a terminal.
func New(message string, enabled bool) *Spinner {
	return &Spinner{
		message: message,
		enabled: enabled && term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start begins animating. A no-op when the spinner is disabled,
// already running, or already stopped: the lifecycle is single-use,
// matching the one query the owning component runs.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.stopped || s.done != nil {
		return
	}
	s.done = make(chan struct{})
	go s.spin(s.done)
}

// Stop halts the animation and clears the spinner line. Idempotent.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.done == nil {
		s.stopped = true
		return
	}
	close(s.done)
	s.done = nil
	s.stopped = true
	fmt.Fprint(os.Stderr, "\r\033[K")
}

func (s *Spinner) spin(done chan struct{}) {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			fmt.Fprintf(os.Stderr, "\r%s %s", frames[i%len(frames)], s.message)
			i++
		}
	}
}
