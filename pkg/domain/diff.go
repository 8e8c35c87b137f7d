package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step      *Step      `json:"step,omitempty"`
	Direction *Direction `json:"direction,omitempty"`

	// Fields contains only changed values, keyed by wire field name.
	Fields map[string]any `json:"fields,omitempty"`

	Locate *LocateStatus `json:"locate,omitempty"`

	// HistoryParams contains the steps appended to the history.
	HistoryParams *HistoryDelta `json:"history,omitempty"`

	Terminated *bool `json:"terminated,omitempty"`
}

// HistoryDelta represents changes to the history stack.
type HistoryDelta struct {
	Appended []Step `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Step != newState.Step {
		step := newState.Step
		diff.Step = &step
	}
	if oldState == nil || oldState.Direction != newState.Direction {
		dir := newState.Direction
		diff.Direction = &dir
	}
	if oldState == nil || oldState.Locate != newState.Locate {
		locate := newState.Locate
		diff.Locate = &locate
	}
	if oldState == nil {
		if newState.Terminated() {
			t := true
			diff.Terminated = &t
		}
	} else if oldState.Terminated() != newState.Terminated() {
		t := newState.Terminated()
		diff.Terminated = &t
	}

	diff.Fields = diffFields(oldState, newState)
	diff.HistoryParams = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// Fields returns the wire view of the user-editable fields of s.
func (s *State) Fields() map[string]any {
	return map[string]any{
		FieldOwnerType:      s.OwnerType,
		FieldOtherOwnerType: s.OtherOwnerType,
		FieldAtLocationNow:  s.AtLocationNow,
		FieldLocation:       s.Location,
		FieldSlots:          s.Slots,
		FieldContact:        s.Contact,
		FieldSpaceType:      s.SpaceType,
		FieldOtherSpaceType: s.OtherSpaceType,
	}
}

func diffFields(old, new *State) map[string]any {
	newFields := new.Fields()
	if old == nil {
		return newFields
	}

	delta := make(map[string]any)
	oldFields := old.Fields()
	for k, v := range newFields {
		if !reflect.DeepEqual(oldFields[k], v) {
			delta[k] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes standard append-only behavior for History.
func diffHistory(old, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil {
		return &HistoryDelta{Appended: new.History}
	}
	if len(new.History) > len(old.History) {
		return &HistoryDelta{Appended: new.History[len(old.History):]}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.Direction == nil &&
		d.Locate == nil &&
		d.Terminated == nil &&
		len(d.Fields) == 0 &&
		d.HistoryParams == nil
}
