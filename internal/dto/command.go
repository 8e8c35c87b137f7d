package dto

import (
	"fmt"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// FieldUpdate is the wire envelope of a single field write.
type FieldUpdate struct {
	Field string `json:"field" mapstructure:"field"`
	Value any    `json:"value" mapstructure:"value"`
}

// LocationInput is the wire form of domain.Location.
type LocationInput struct {
	Address string   `json:"address" mapstructure:"address"`
	Lat     *float64 `json:"lat" mapstructure:"lat"`
	Lng     *float64 `json:"lng" mapstructure:"lng"`
}

// DecodeCommand turns an envelope into a typed command.
// Enum values are normalised; a null value clears the field.
func DecodeCommand(u FieldUpdate) (domain.Command, error) {
	if u.Field == domain.FieldLocation {
		var in LocationInput
		if u.Value != nil {
			if err := decodeStrict(u.Value, &in); err != nil {
				return nil, fmt.Errorf("%w: location: %v", domain.ErrInvalidValue, err)
			}
		}
		return domain.SetLocation{Value: domain.Location{Address: in.Address, Lat: in.Lat, Lng: in.Lng}}, nil
	}

	raw, err := asString(u.Field, u.Value)
	if err != nil {
		return nil, err
	}

	switch u.Field {
	case domain.FieldOwnerType:
		v, err := domain.ParseOwnerType(raw)
		if err != nil {
			return nil, err
		}
		return domain.SetOwnerType{Value: v}, nil
	case domain.FieldOtherOwnerType:
		return domain.SetOtherOwnerType{Value: raw}, nil
	case domain.FieldAtLocationNow:
		v, err := domain.ParsePresence(raw)
		if err != nil {
			return nil, err
		}
		return domain.SetAtLocationNow{Value: v}, nil
	case domain.FieldSlots:
		v, err := domain.ParseSlotBand(raw)
		if err != nil {
			return nil, err
		}
		return domain.SetSlots{Value: v}, nil
	case domain.FieldContact:
		return domain.SetContact{Value: raw}, nil
	case domain.FieldSpaceType:
		v, err := domain.ParseSpaceType(raw)
		if err != nil {
			return nil, err
		}
		return domain.SetSpaceType{Value: v}, nil
	case domain.FieldOtherSpaceType:
		return domain.SetOtherSpaceType{Value: raw}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, u.Field)
}

// DecodeUpdates decodes a list of loosely typed envelopes (e.g. MCP tool arguments).
func DecodeUpdates(raw any) ([]domain.Command, error) {
	var updates []FieldUpdate
	if err := decodeStrict(raw, &updates); err != nil {
		return nil, fmt.Errorf("%w: updates: %v", domain.ErrInvalidValue, err)
	}
	cmds := make([]domain.Command, 0, len(updates))
	for _, u := range updates {
		cmd, err := DecodeCommand(u)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// DecodeManualAddress decodes the picker payload.
func DecodeManualAddress(raw any) (domain.ManualAddress, error) {
	var addr domain.ManualAddress
	if raw == nil {
		return addr, nil
	}
	if err := decodeStrict(raw, &addr); err != nil {
		return addr, fmt.Errorf("%w: address: %v", domain.ErrInvalidValue, err)
	}
	return addr, nil
}

// DecodePosition decodes a device fix. Both coordinates are required.
func DecodePosition(raw any) (domain.Position, error) {
	var in struct {
		Lat      *float64 `mapstructure:"lat"`
		Lng      *float64 `mapstructure:"lng"`
		Accuracy float64  `mapstructure:"accuracy"`
	}
	if err := decodeStrict(raw, &in); err != nil {
		return domain.Position{}, fmt.Errorf("%w: position: %v", domain.ErrInvalidValue, err)
	}
	if in.Lat == nil || in.Lng == nil {
		return domain.Position{}, fmt.Errorf("%w: position needs lat and lng", domain.ErrInvalidValue)
	}
	return domain.Position{Lat: *in.Lat, Lng: *in.Lng, Accuracy: in.Accuracy}, nil
}

func asString(field string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	}
	return "", fmt.Errorf("%w: %s must be a string, got %T", domain.ErrInvalidValue, field, v)
}

func decodeStrict(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: false,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
