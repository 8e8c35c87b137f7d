package domain

import (
	"fmt"
	"time"
)

// SubmissionRecord is the assembled lead handed to the submission sink.
type SubmissionRecord struct {
	OwnerType      OwnerType `json:"ownerType"`
	OtherOwnerType *string   `json:"otherOwnerType,omitempty"`
	AtLocationNow  Presence  `json:"atLocationNow"`
	Location       Location  `json:"location"`
	Slots          SlotBand  `json:"slots"`
	Contact        string    `json:"contact"`
	SpaceType      SpaceType `json:"spaceType"`
	OtherSpaceType *string   `json:"otherSpaceType,omitempty"`
}

// Submission wraps a record with its routing metadata.
type Submission struct {
	SessionID   string           `json:"session_id"`
	SubmittedAt time.Time        `json:"submitted_at"`
	Record      SubmissionRecord `json:"record"`
}

// Assemble builds the submission record from a state whose data steps all pass their gates.
// The "other" free-text fields are present only when the matching choice is "other".
func Assemble(state *State) (SubmissionRecord, error) {
	if state == nil {
		return SubmissionRecord{}, fmt.Errorf("%w: nil state", ErrIncomplete)
	}
	for _, step := range AllSteps() {
		if step.Terminal() {
			continue
		}
		if missing := MissingFields(state, step); len(missing) > 0 {
			return SubmissionRecord{}, fmt.Errorf("%w: step %s missing %v", ErrIncomplete, step, missing)
		}
	}

	rec := SubmissionRecord{
		OwnerType:     state.OwnerType,
		AtLocationNow: state.AtLocationNow,
		Location:      state.Location.clone(),
		Slots:         state.Slots,
		Contact:       state.Contact,
		SpaceType:     state.SpaceType,
	}
	if state.OwnerType == OwnerOther {
		v := state.OtherOwnerType
		rec.OtherOwnerType = &v
	}
	if state.SpaceType == SpaceOther {
		v := state.OtherSpaceType
		rec.OtherSpaceType = &v
	}
	return rec, nil
}
