// File: internal/session/sequence.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package session

import "math"

// Sequence is one configurable counter slot.
type Sequence struct {
	Current uint64
	Step    uint64
	Reset   uint64 // value to restart from on overflow
	Active  bool
}

// Configure sets the slot from a seqK command. A zero init or step
// deactivates the slot.
func (s *Sequence) Configure(init, step uint64) {
	s.Current = init
	s.Step = step
	s.Reset = init
	s.Active = init != 0 && step != 0
}

// Advance moves Current forward by Step, restarting from Reset instead of
// wrapping when the addition would overflow.
func (s *Sequence) Advance() {
	if !s.Active {
		return
	}
	if math.MaxUint64-s.Current < s.Step {
		s.Current = s.Reset
		return
	}
	s.Current += s.Step
}
