package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step identifies a screen of the listing wizard.
// The zero value is not a valid step.
type Step int

const (
	StepOwnerType     Step = iota + 1 // Who owns the space
	StepLocationEntry                 // Where the space is
	StepDetails                       // Capacity and contact
	StepSpaceType                     // Walled / open / other
	StepComplete                      // Terminal sink, submission handed off
)

// DataSteps is the number of data-entry steps (the terminal step is not counted).
const DataSteps = 4

// Direction records which way the last transition went.
// It only drives presentation (transition animation).
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

var stepNames = map[Step]string{
	StepOwnerType:     "owner_type",
	StepLocationEntry: "location",
	StepDetails:       "details",
	StepSpaceType:     "space_type",
	StepComplete:      "complete",
}

// transitions is the forward edge of every step. Complete has none.
var transitions = map[Step]Step{
	StepOwnerType:     StepLocationEntry,
	StepLocationEntry: StepDetails,
	StepDetails:       StepSpaceType,
	StepSpaceType:     StepComplete,
}

// backEdges is the backward edge of every step. OwnerType has none and
// Complete is terminal, so neither appears here.
var backEdges = map[Step]Step{
	StepLocationEntry: StepOwnerType,
	StepDetails:       StepLocationEntry,
	StepSpaceType:     StepDetails,
}

// AllSteps returns every step in flow order, terminal step last.
func AllSteps() []Step {
	return []Step{StepOwnerType, StepLocationEntry, StepDetails, StepSpaceType, StepComplete}
}

// Valid reports whether s is one of the declared steps.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// Terminal reports whether s is the sink step.
func (s Step) Terminal() bool {
	return s == StepComplete
}

// Next returns the forward neighbour of s, if any.
func (s Step) Next() (Step, bool) {
	n, ok := transitions[s]
	return n, ok
}

// Prev returns the backward neighbour of s, if any.
func (s Step) Prev() (Step, bool) {
	p, ok := backEdges[s]
	return p, ok
}

// String returns the stable identifier of the step (used in URLs, logs and copy files).
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ParseStep accepts either the stable identifier or the 1-based number.
func ParseStep(raw string) (Step, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	for s, name := range stepNames {
		if name == raw || fmt.Sprintf("%d", int(s)) == raw {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown step %q", ErrInvalidValue, raw)
}

// MarshalJSON encodes the step as its number so clients can compute progress directly.
func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}

// UnmarshalJSON accepts both numeric and string forms.
func (s *Step) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if !Step(n).Valid() {
			return fmt.Errorf("%w: step %d out of range", ErrInvalidValue, n)
		}
		*s = Step(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: step must be a number or name", ErrInvalidValue)
	}
	parsed, err := ParseStep(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
