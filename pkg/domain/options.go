package domain

import (
	"fmt"
	"strings"
)

// OwnerType describes who is listing the space. The empty value means unset.
type OwnerType string

const (
	OwnerCommercial OwnerType = "commercial"
	OwnerLand       OwnerType = "land"
	OwnerOther      OwnerType = "other"
)

// Presence answers "are you at the parking spot now?". The empty value means unset.
type Presence string

const (
	PresenceYes Presence = "yes"
	PresenceNo  Presence = "no"
)

// SlotBand is the approximate four-wheeler capacity. The empty value means unset.
type SlotBand string

const (
	SlotsUpTo20 SlotBand = "upto20"
	Slots20To50 SlotBand = "20-50"
	SlotsOver50 SlotBand = "over50"
)

// SpaceType classifies the physical space. The empty value means unset.
type SpaceType string

const (
	SpaceWalled SpaceType = "type1"
	SpaceOpen   SpaceType = "type2"
	SpaceOther  SpaceType = "other"
)

// OwnerTypes lists the selectable owner types in display order.
func OwnerTypes() []OwnerType { return []OwnerType{OwnerCommercial, OwnerLand, OwnerOther} }

// SlotBands lists the selectable capacity bands in display order.
func SlotBands() []SlotBand { return []SlotBand{SlotsUpTo20, Slots20To50, SlotsOver50} }

// SpaceTypes lists the selectable space types in display order.
func SpaceTypes() []SpaceType { return []SpaceType{SpaceWalled, SpaceOpen, SpaceOther} }

// ParseOwnerType normalises raw input. The empty string yields the unset value.
func ParseOwnerType(raw string) (OwnerType, error) {
	switch v := normalize(raw); v {
	case "":
		return "", nil
	case string(OwnerCommercial), string(OwnerLand), string(OwnerOther):
		return OwnerType(v), nil
	}
	return "", fmt.Errorf("%w: owner type %q", ErrInvalidValue, raw)
}

// ParsePresence normalises raw input. The empty string yields the unset value.
func ParsePresence(raw string) (Presence, error) {
	switch v := normalize(raw); v {
	case "":
		return "", nil
	case "yes", "y", "true":
		return PresenceYes, nil
	case "no", "n", "false":
		return PresenceNo, nil
	}
	return "", fmt.Errorf("%w: presence %q", ErrInvalidValue, raw)
}

// ParseSlotBand normalises raw input, accepting the descriptive aliases as well.
func ParseSlotBand(raw string) (SlotBand, error) {
	switch v := normalize(raw); v {
	case "":
		return "", nil
	case string(SlotsUpTo20):
		return SlotsUpTo20, nil
	case string(Slots20To50), "between20and50":
		return Slots20To50, nil
	case string(SlotsOver50), "gt50":
		return SlotsOver50, nil
	}
	return "", fmt.Errorf("%w: slot band %q", ErrInvalidValue, raw)
}

// ParseSpaceType normalises raw input, accepting "walled" and "open" as aliases.
func ParseSpaceType(raw string) (SpaceType, error) {
	switch v := normalize(raw); v {
	case "":
		return "", nil
	case string(SpaceWalled), "walled":
		return SpaceWalled, nil
	case string(SpaceOpen), "open":
		return SpaceOpen, nil
	case string(SpaceOther):
		return SpaceOther, nil
	}
	return "", fmt.Errorf("%w: space type %q", ErrInvalidValue, raw)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
