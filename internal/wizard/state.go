// Package wizard models multi-step registration flows as explicit state
// machines. A State records which steps have been completed and the payload
// staged by each; a step may only be entered once every earlier step is
// complete.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind distinguishes the independent registration flows.
type Kind string

const (
	KindStudent Kind = "student"
	KindTutor   Kind = "tutor"
)

// Step is a 1-based position in a wizard.
type Step int

const (
	StepOne   Step = 1
	StepTwo   Step = 2
	StepThree Step = 3

	// FinalStep commits the wizard; its payload is never staged.
	FinalStep = StepThree
)

var (
	// ErrOutOfOrder is returned when a step is attempted before its predecessors.
	ErrOutOfOrder = errors.New("wizard: prior steps not completed")
	// ErrInvalidStep is returned for steps outside 1..FinalStep.
	ErrInvalidStep = errors.New("wizard: invalid step")
)

// State is one wizard instance.
type State struct {
	ID        string                   `json:"id"`
	Kind      Kind                     `json:"kind"`
	Owner     string                   `json:"owner,omitempty"`
	Completed Step                     `json:"completed"`
	Staged    map[Step]json.RawMessage `json:"staged"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// NewState returns a fresh instance with no completed steps.
func NewState(id string, kind Kind, owner string, now time.Time) *State {
	return &State{
		ID:        id,
		Kind:      kind,
		Owner:     owner,
		Staged:    make(map[Step]json.RawMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanEnter reports whether every step before step has been completed.
func (s *State) CanEnter(step Step) bool {
	if step < StepOne || step > FinalStep {
		return false
	}
	return s.Completed >= step-1
}

// Complete stages payload for step and discards anything staged for later
// steps, so re-submitting an earlier step forces the user forward again.
func (s *State) Complete(step Step, payload interface{}, now time.Time) error {
	if step < StepOne || step >= FinalStep {
		return ErrInvalidStep
	}
	if !s.CanEnter(step) {
		return ErrOutOfOrder
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("stage step %d: %w", step, err)
	}
	if s.Staged == nil {
		s.Staged = make(map[Step]json.RawMessage)
	}
	for later := step + 1; later <= FinalStep; later++ {
		delete(s.Staged, later)
	}
	s.Staged[step] = raw
	s.Completed = step
	s.UpdatedAt = now
	return nil
}

// Load decodes the payload staged for a completed step into dest.
func (s *State) Load(step Step, dest interface{}) error {
	if step < StepOne || step >= FinalStep {
		return ErrInvalidStep
	}
	raw, ok := s.Staged[step]
	if step > s.Completed || !ok {
		return ErrOutOfOrder
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("load step %d: %w", step, err)
	}
	return nil
}

// OwnedBy reports whether the instance belongs to principal. Anonymous
// instances (no owner) match any caller.
func (s *State) OwnedBy(principal string) bool {
	return s.Owner == "" || s.Owner == principal
}
