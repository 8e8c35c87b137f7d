package domain

import (
	"slices"
	"time"
)

// Location is where the listed space is.
// Lat/Lng are only ever set by the device geolocation branch; a manually
// searched address never carries coordinates.
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// HasCoordinates reports whether both coordinates are populated.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// LocateStatus tracks the asynchronous device-geolocation request of a session.
type LocateStatus struct {
	// Generation increments on every request and on every cancellation.
	// A resolution is applied only when it carries the current generation.
	Generation uint64 `json:"generation"`

	// Pending is true while a request with the current generation is in flight.
	Pending bool `json:"pending"`

	// Error holds the retryable, user-facing message of the last failed request.
	Error string `json:"error,omitempty"`
}

// State is the single mutable record of one wizard session.
type State struct {
	SessionID string    `json:"session_id"`
	Step      Step      `json:"step"`
	Direction Direction `json:"direction"`

	OwnerType      OwnerType `json:"owner_type"`
	OtherOwnerType string    `json:"other_owner_type"`
	AtLocationNow  Presence  `json:"at_location_now"`
	Location       Location  `json:"location"`
	Slots          SlotBand  `json:"slots"`
	Contact        string    `json:"contact"`
	SpaceType      SpaceType `json:"space_type"`
	OtherSpaceType string    `json:"other_space_type"`

	Locate LocateStatus `json:"locate"`

	// History is the path of visited steps, including backward moves.
	History []Step `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a clean session positioned at the first step with every field unset.
func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{
		SessionID: sessionID,
		Step:      StepOwnerType,
		Direction: DirectionForward,
		History:   []Step{StepOwnerType},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminated reports whether the session reached the terminal step.
func (s *State) Terminated() bool {
	return s.Step.Terminal()
}

// Snapshot returns a deep copy safe for independent mutation.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.History = slices.Clone(s.History)
	next.Location = s.Location.clone()
	return &next
}

func (l Location) clone() Location {
	out := Location{Address: l.Address}
	if l.Lat != nil {
		lat := *l.Lat
		out.Lat = &lat
	}
	if l.Lng != nil {
		lng := *l.Lng
		out.Lng = &lng
	}
	return out
}
