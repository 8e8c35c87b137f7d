package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/spotlist/internal/dto"
	"github.com/aretw0/spotlist/pkg/domain"
)

// IntentKind enumerates what a typed line asks the runner to do.
type IntentKind int

const (
	IntentNext IntentKind = iota
	IntentBack
	IntentSet
	IntentLocate
	IntentManual
	IntentHelp
	IntentQuit
)

// Intent is one parsed line of input.
type Intent struct {
	Kind    IntentKind
	Command domain.Command       // IntentSet
	Address domain.ManualAddress // IntentManual
}

// ErrUnrecognized is returned for a line that maps to no action on the current step.
var ErrUnrecognized = errors.New("unrecognized input")

// ParseIntent maps a line typed on the current step to an action.
//
// Accepted forms:
//
//	"" | next | n          advance (Finish on the last data step)
//	back | b               retreat
//	locate | fetch         device geolocation (location step, "yes" branch)
//	manual a, b, c, d      picker address as state, district, city, landmark
//	field=value            write any field by wire name
//	1..N                   pick the N-th choice of the step
//	anything else          the step's primary answer
func ParseIntent(state *domain.State, view domain.View, line string) (Intent, error) {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)

	switch lower {
	case "", "next", "n", "finish":
		return Intent{Kind: IntentNext}, nil
	case "back", "b", "prev":
		return Intent{Kind: IntentBack}, nil
	case "help", "?":
		return Intent{Kind: IntentHelp}, nil
	case "exit", "quit", "q":
		return Intent{Kind: IntentQuit}, nil
	case "locate", "fetch":
		return Intent{Kind: IntentLocate}, nil
	}

	if rest, ok := cutPrefixFold(line, "manual"); ok {
		return Intent{Kind: IntentManual, Address: parseManual(rest)}, nil
	}

	if name, value, ok := strings.Cut(line, "="); ok && !strings.ContainsAny(name, " \t") {
		cmd, err := dto.DecodeCommand(dto.FieldUpdate{Field: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
		if err != nil {
			return Intent{}, err
		}
		return Intent{Kind: IntentSet, Command: cmd}, nil
	}

	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(view.Copy.Choices) {
		return setChoice(view.Step, view.Copy.Choices[n-1].Value)
	}

	return answer(state, view.Step, line)
}

// answer interprets free text as the primary answer of step.
func answer(state *domain.State, step domain.Step, line string) (Intent, error) {
	switch step {
	case domain.StepOwnerType:
		if _, err := domain.ParseOwnerType(line); err == nil {
			return setChoice(step, line)
		}
		if state.OwnerType == domain.OwnerOther {
			return set(domain.FieldOtherOwnerType, line)
		}
	case domain.StepLocationEntry:
		if _, err := domain.ParsePresence(line); err == nil {
			return setChoice(step, line)
		}
	case domain.StepDetails:
		if _, err := domain.ParseSlotBand(line); err == nil {
			return setChoice(step, line)
		}
		return set(domain.FieldContact, line)
	case domain.StepSpaceType:
		if _, err := domain.ParseSpaceType(line); err == nil {
			return setChoice(step, line)
		}
		if state.SpaceType == domain.SpaceOther {
			return set(domain.FieldOtherSpaceType, line)
		}
	}
	return Intent{}, fmt.Errorf("%w: %q", ErrUnrecognized, line)
}

func setChoice(step domain.Step, value string) (Intent, error) {
	field := choiceField(step)
	if field == "" {
		return Intent{}, fmt.Errorf("%w: step %s has no choices", ErrUnrecognized, step)
	}
	return set(field, value)
}

func set(field, value string) (Intent, error) {
	cmd, err := dto.DecodeCommand(dto.FieldUpdate{Field: field, Value: value})
	if err != nil {
		return Intent{}, err
	}
	return Intent{Kind: IntentSet, Command: cmd}, nil
}

// choiceField is the field written by the choices of step.
func choiceField(step domain.Step) string {
	switch step {
	case domain.StepOwnerType:
		return domain.FieldOwnerType
	case domain.StepLocationEntry:
		return domain.FieldAtLocationNow
	case domain.StepDetails:
		return domain.FieldSlots
	case domain.StepSpaceType:
		return domain.FieldSpaceType
	}
	return ""
}

func parseManual(rest string) domain.ManualAddress {
	parts := strings.SplitN(rest, ",", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return domain.ManualAddress{
		State:    strings.TrimSpace(parts[0]),
		District: strings.TrimSpace(parts[1]),
		City:     strings.TrimSpace(parts[2]),
		Landmark: strings.TrimSpace(parts[3]),
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	rest := s[len(prefix):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return rest, true
}
