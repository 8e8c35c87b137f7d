package domain

import (
	"fmt"
	"strings"
)

// PlaceholderAddress is used when a manual search is confirmed with every part blank.
const PlaceholderAddress = "Manual location set"

// ManualAddress is what the location picker collects when the user is not at the spot.
type ManualAddress struct {
	State    string `json:"state" mapstructure:"state"`
	District string `json:"district" mapstructure:"district"`
	City     string `json:"city" mapstructure:"city"`
	Landmark string `json:"landmark" mapstructure:"landmark"`
}

// Compose joins the non-empty parts, most specific first, with ", ".
func (m ManualAddress) Compose() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{m.Landmark, m.City, m.District, m.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return PlaceholderAddress
	}
	return strings.Join(parts, ", ")
}

// Position is a device geolocation fix.
type Position struct {
	Lat      float64 `json:"lat" mapstructure:"lat"`
	Lng      float64 `json:"lng" mapstructure:"lng"`
	Accuracy float64 `json:"accuracy,omitempty" mapstructure:"accuracy"`
}

// CurrentLocation converts a fix into the location record of the geolocation branch.
func (p Position) CurrentLocation() Location {
	lat, lng := p.Lat, p.Lng
	return Location{
		Address: fmt.Sprintf("Current Location (%.4f, %.4f)", lat, lng),
		Lat:     &lat,
		Lng:     &lng,
	}
}

// PickerOptions are the choices offered by the manual location picker.
type PickerOptions struct {
	States    []string `json:"states" yaml:"states"`
	Districts []string `json:"districts" yaml:"districts"`
	Cities    []string `json:"cities" yaml:"cities"`
}

// DefaultPickerOptions returns the launch-region choices.
func DefaultPickerOptions() PickerOptions {
	return PickerOptions{
		States:    []string{"Maharashtra", "Karnataka"},
		Districts: []string{"Pune", "Mumbai"},
		Cities:    []string{"Pune City", "Pimpri-Chinchwad"},
	}
}
