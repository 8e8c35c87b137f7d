package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeState() *State {
	s := NewState("s")
	s.OwnerType = OwnerCommercial
	s.AtLocationNow = PresenceNo
	s.Location.Address = "Pune City, Pune, Maharashtra"
	s.Slots = SlotsUpTo20
	s.Contact = "9876543210"
	s.SpaceType = SpaceWalled
	return s
}

func TestAssemble_WireShape(t *testing.T) {
	rec, err := Assemble(completeState())
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"ownerType": "commercial",
		"atLocationNow": "no",
		"location": {"address": "Pune City, Pune, Maharashtra", "lat": null, "lng": null},
		"slots": "upto20",
		"contact": "9876543210",
		"spaceType": "type1"
	}`, string(data))
}

func TestAssemble_OtherFieldsPresentOnlyForOther(t *testing.T) {
	s := completeState()
	s.OtherOwnerType = "leftover text"
	s.OtherSpaceType = "leftover text"

	rec, err := Assemble(s)
	require.NoError(t, err)
	assert.Nil(t, rec.OtherOwnerType, "otherOwnerType must be absent unless ownerType is other")
	assert.Nil(t, rec.OtherSpaceType)

	s.OwnerType = OwnerOther
	s.OtherOwnerType = "barn"
	s.SpaceType = SpaceOther
	s.OtherSpaceType = "roof"

	rec, err = Assemble(s)
	require.NoError(t, err)
	require.NotNil(t, rec.OtherOwnerType)
	assert.Equal(t, "barn", *rec.OtherOwnerType)
	require.NotNil(t, rec.OtherSpaceType)
	assert.Equal(t, "roof", *rec.OtherSpaceType)
}

func TestAssemble_Incomplete(t *testing.T) {
	s := completeState()
	s.Contact = "12345"

	_, err := Assemble(s)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = Assemble(nil)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestManualAddress_Compose(t *testing.T) {
	assert.Equal(t, PlaceholderAddress, ManualAddress{}.Compose())
	assert.Equal(t, "Pune City, Pune, Maharashtra",
		ManualAddress{State: "Maharashtra", District: "Pune", City: "Pune City"}.Compose())
	assert.Equal(t, "Near Gate 2, Maharashtra",
		ManualAddress{State: "Maharashtra", Landmark: "Near Gate 2"}.Compose())
}

func TestPosition_CurrentLocation(t *testing.T) {
	loc := Position{Lat: 18.5204, Lng: 73.8567}.CurrentLocation()

	assert.Equal(t, "Current Location (18.5204, 73.8567)", loc.Address)
	require.True(t, loc.HasCoordinates())
	assert.Equal(t, 18.5204, *loc.Lat)
	assert.Equal(t, 73.8567, *loc.Lng)
}
