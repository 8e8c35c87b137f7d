package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_AppliesWithoutMutatingInput(t *testing.T) {
	original := NewState("s")

	next := Reduce(original, SetOwnerType{Value: OwnerLand})

	assert.Equal(t, OwnerLand, next.OwnerType)
	assert.Equal(t, OwnerType(""), original.OwnerType, "input state must not change")
	assert.Equal(t, StepOwnerType, next.Step, "updates never move the step")
}

func TestReduce_EveryCommand(t *testing.T) {
	lat, lng := 1.5, 2.5
	s := NewState("s")
	cmds := []Command{
		SetOwnerType{Value: OwnerOther},
		SetOtherOwnerType{Value: "barn"},
		SetAtLocationNow{Value: PresenceYes},
		SetLocation{Value: Location{Address: "here", Lat: &lat, Lng: &lng}},
		SetSlots{Value: Slots20To50},
		SetContact{Value: "9876543210"},
		SetSpaceType{Value: SpaceOther},
		SetOtherSpaceType{Value: "roof"},
	}
	for _, c := range cmds {
		s = Reduce(s, c)
	}

	assert.Equal(t, OwnerOther, s.OwnerType)
	assert.Equal(t, "barn", s.OtherOwnerType)
	assert.Equal(t, PresenceYes, s.AtLocationNow)
	assert.Equal(t, "here", s.Location.Address)
	require.True(t, s.Location.HasCoordinates())
	assert.Equal(t, 1.5, *s.Location.Lat)
	assert.Equal(t, Slots20To50, s.Slots)
	assert.Equal(t, "9876543210", s.Contact)
	assert.Equal(t, SpaceOther, s.SpaceType)
	assert.Equal(t, "roof", s.OtherSpaceType)

	// The stored location does not alias the command payload.
	lat = 99
	assert.Equal(t, 1.5, *s.Location.Lat)
}

func TestReduce_FieldNames(t *testing.T) {
	assert.Equal(t, FieldContact, SetContact{}.Field())
	assert.Equal(t, FieldLocation, SetLocation{}.Field())
	assert.Equal(t, FieldOtherSpaceType, SetOtherSpaceType{}.Field())
}

func TestParseOptions(t *testing.T) {
	slots, err := ParseSlotBand("between20and50")
	require.NoError(t, err)
	assert.Equal(t, Slots20To50, slots)

	space, err := ParseSpaceType(" Walled ")
	require.NoError(t, err)
	assert.Equal(t, SpaceWalled, space)

	presence, err := ParsePresence("Y")
	require.NoError(t, err)
	assert.Equal(t, PresenceYes, presence)

	owner, err := ParseOwnerType("")
	require.NoError(t, err)
	assert.Equal(t, OwnerType(""), owner, "empty input clears the field")

	_, err = ParseOwnerType("castle")
	assert.ErrorIs(t, err, ErrInvalidValue)
}
