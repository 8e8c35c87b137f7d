package domain

// Command is one typed field update. The set of commands is closed: each
// variant carries exactly the payload type of the field it overwrites.
type Command interface {
	// Field returns the wire name of the field the command writes.
	Field() string
	apply(*State)
}

// Field names as they appear on the wire.
const (
	FieldOwnerType      = "ownerType"
	FieldOtherOwnerType = "otherOwnerType"
	FieldAtLocationNow  = "atLocationNow"
	FieldLocation       = "location"
	FieldSlots          = "slots"
	FieldContact        = "contact"
	FieldSpaceType      = "spaceType"
	FieldOtherSpaceType = "otherSpaceType"
)

type (
	SetOwnerType      struct{ Value OwnerType }
	SetOtherOwnerType struct{ Value string }
	SetAtLocationNow  struct{ Value Presence }
	SetLocation       struct{ Value Location }
	SetSlots          struct{ Value SlotBand }
	SetContact        struct{ Value string }
	SetSpaceType      struct{ Value SpaceType }
	SetOtherSpaceType struct{ Value string }
)

func (SetOwnerType) Field() string      { return FieldOwnerType }
func (SetOtherOwnerType) Field() string { return FieldOtherOwnerType }
func (SetAtLocationNow) Field() string  { return FieldAtLocationNow }
func (SetLocation) Field() string       { return FieldLocation }
func (SetSlots) Field() string          { return FieldSlots }
func (SetContact) Field() string        { return FieldContact }
func (SetSpaceType) Field() string      { return FieldSpaceType }
func (SetOtherSpaceType) Field() string { return FieldOtherSpaceType }

func (c SetOwnerType) apply(s *State)      { s.OwnerType = c.Value }
func (c SetOtherOwnerType) apply(s *State) { s.OtherOwnerType = c.Value }
func (c SetAtLocationNow) apply(s *State)  { s.AtLocationNow = c.Value }
func (c SetLocation) apply(s *State)       { s.Location = c.Value.clone() }
func (c SetSlots) apply(s *State)          { s.Slots = c.Value }
func (c SetContact) apply(s *State)        { s.Contact = c.Value }
func (c SetSpaceType) apply(s *State)      { s.SpaceType = c.Value }
func (c SetOtherSpaceType) apply(s *State) { s.OtherSpaceType = c.Value }

// Reduce returns a copy of state with cmd applied.
// Updates are never gated by validation and never move the step.
func Reduce(state *State, cmd Command) *State {
	next := state.Snapshot()
	if cmd != nil {
		cmd.apply(next)
	}
	return next
}
