package stream

import "fmt"

// Sequence checks the ordering rules of a single stream: nothing may follow
// a terminal event. Iteration regressions are reported but allowed, since
// solver workers emit concurrently.
type Sequence struct {
	terminal      EventType
	lastIteration int
	seen          int
}

// Accept records ev. It returns a *ProtocolError if a terminal event was
// already accepted. regressed is true when a progress iteration is lower
// than the previous one.
func (s *Sequence) Accept(ev *Event) (regressed bool, err error) {
	if s.terminal != "" {
		return false, newProtocolError("", fmt.Sprintf("%s event after terminal %s event", ev.Type, s.terminal), nil)
	}

	s.seen++
	if ev.Type.Terminal() {
		s.terminal = ev.Type
		return false, nil
	}

	if ev.Progress != nil {
		if s.seen > 1 && ev.Progress.Iteration < s.lastIteration {
			regressed = true
		} else {
			s.lastIteration = ev.Progress.Iteration
		}
	}
	return regressed, nil
}

// Done reports whether a terminal event has been accepted.
func (s *Sequence) Done() bool {
	return s.terminal != ""
}

// Terminal returns the type of the accepted terminal event, or "".
func (s *Sequence) Terminal() EventType {
	return s.terminal
}

// Seen returns the number of accepted events.
func (s *Sequence) Seen() int {
	return s.seen
}
