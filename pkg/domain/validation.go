package domain

import (
	"regexp"
	"strings"
)

// contactPattern is a strict 10-digit match. No country code, spaces or
// leading-zero stripping is tolerated.
var contactPattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidContact reports whether contact is exactly ten decimal digits.
func ValidContact(contact string) bool {
	return contactPattern.MatchString(contact)
}

// IsStepValid is the gate of the forward transition out of step.
// The terminal step is always valid.
func IsStepValid(state *State, step Step) bool {
	return len(MissingFields(state, step)) == 0
}

// MissingFields lists the wire names of the fields currently blocking the gate
// of step, in display order. An empty result means the gate is open.
func MissingFields(state *State, step Step) []string {
	if state == nil {
		return nil
	}

	var missing []string
	switch step {
	case StepOwnerType:
		if state.OwnerType == "" {
			missing = append(missing, FieldOwnerType)
		} else if state.OwnerType == OwnerOther && blank(state.OtherOwnerType) {
			missing = append(missing, FieldOtherOwnerType)
		}
	case StepLocationEntry:
		if state.AtLocationNow == "" {
			missing = append(missing, FieldAtLocationNow)
		}
		if state.Location.Address == "" {
			missing = append(missing, FieldLocation)
		}
	case StepDetails:
		if state.Slots == "" {
			missing = append(missing, FieldSlots)
		}
		if !ValidContact(state.Contact) {
			missing = append(missing, FieldContact)
		}
	case StepSpaceType:
		if state.SpaceType == "" {
			missing = append(missing, FieldSpaceType)
		} else if state.SpaceType == SpaceOther && blank(state.OtherSpaceType) {
			missing = append(missing, FieldOtherSpaceType)
		}
	}
	return missing
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RedactContact masks all but the last two digits, for logs.
func RedactContact(contact string) string {
	if len(contact) <= 2 {
		return strings.Repeat("*", len(contact))
	}
	return strings.Repeat("*", len(contact)-2) + contact[len(contact)-2:]
}
