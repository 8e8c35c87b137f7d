package domain

// Choice is one selectable option of a step.
type Choice struct {
	Value       string `json:"value" yaml:"value" mapstructure:"value"`
	Title       string `json:"title" yaml:"title" mapstructure:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// StepCopy is the user-facing text of a step.
type StepCopy struct {
	Title   string   `json:"title" yaml:"title" mapstructure:"title"`
	Prompt  string   `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`
	// Body is free markdown shown under the title (e.g. the thank-you note).
	Body string `json:"body,omitempty" yaml:"-" mapstructure:"-"`
}

// View is everything a presentation layer needs to draw the current step.
// It is derived from State on every render and never stored.
type View struct {
	SessionID string   `json:"session_id"`
	Step      Step     `json:"step"`
	StepID    string   `json:"step_id"`
	Copy      StepCopy `json:"copy"`

	// Number and Total drive the "Step n of N" progress indicator.
	Number   int     `json:"number"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"`

	CanBack   bool   `json:"can_back"`
	CanNext   bool   `json:"can_next"`
	NextLabel string `json:"next_label,omitempty"`
	Terminal  bool   `json:"terminal"`

	Missing []string       `json:"missing,omitempty"`
	Fields  map[string]any `json:"fields"`

	// ShowOtherInput is set when the free-text "please specify" input of the step is visible.
	ShowOtherInput bool `json:"show_other_input,omitempty"`

	// Location sub-flow presentation (step 2 only).
	LocationBranch Presence       `json:"location_branch,omitempty"`
	Locate         *LocateStatus  `json:"locate,omitempty"`
	Picker         *PickerOptions `json:"picker,omitempty"`

	// ContactPrefix is the display-only dialling prefix (step 3 only).
	ContactPrefix string `json:"contact_prefix,omitempty"`
}
