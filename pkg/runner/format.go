package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/spotlist/pkg/domain"
)

const progressWidth = 20

// FormatView renders a step as markdown. The layout mirrors the listing form:
// progress header, question, numbered choices, conditional inputs, missing fields.
func FormatView(view domain.View) string {
	var b strings.Builder

	if view.Terminal {
		fmt.Fprintf(&b, "# %s\n\n", view.Copy.Title)
		if view.Copy.Body != "" {
			fmt.Fprintf(&b, "%s\n", strings.TrimSpace(view.Copy.Body))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "**Step %d of %d** `%s`\n\n", view.Number, view.Total, progressBar(view.Progress))
	fmt.Fprintf(&b, "## %s\n\n", view.Copy.Title)
	if view.Copy.Prompt != "" {
		fmt.Fprintf(&b, "%s\n\n", view.Copy.Prompt)
	}

	current := selectedChoice(view)
	for i, c := range view.Copy.Choices {
		mark := " "
		if c.Value == current {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] **%s**", i+1, mark, c.Title)
		if c.Description != "" {
			fmt.Fprintf(&b, " - %s", c.Description)
		}
		b.WriteString("\n")
	}
	if len(view.Copy.Choices) > 0 {
		b.WriteString("\n")
	}

	writeStepExtras(&b, view)

	if len(view.Missing) > 0 {
		fmt.Fprintf(&b, "_Missing: %s_\n\n", strings.Join(view.Missing, ", "))
	}

	b.WriteString(hints(view))
	return b.String()
}

func writeStepExtras(b *strings.Builder, view domain.View) {
	field := func(name string) string {
		return fieldString(view, name)
	}

	switch view.Step {
	case domain.StepOwnerType:
		if view.ShowOtherInput {
			fmt.Fprintf(b, "Please specify: `%s`\n\n", field(domain.FieldOtherOwnerType))
		}
	case domain.StepLocationEntry:
		if loc, ok := view.Fields[domain.FieldLocation].(domain.Location); ok && loc.Address != "" {
			fmt.Fprintf(b, "Location: **%s**\n\n", loc.Address)
		}
		if view.Locate != nil {
			if view.Locate.Pending {
				b.WriteString("Fetching location...\n\n")
			}
			if view.Locate.Error != "" {
				fmt.Fprintf(b, "> %s\n\n", view.Locate.Error)
			}
		}
		if view.Picker != nil {
			fmt.Fprintf(b, "States: %s\n\nDistricts: %s\n\nCities: %s\n\n",
				strings.Join(view.Picker.States, ", "),
				strings.Join(view.Picker.Districts, ", "),
				strings.Join(view.Picker.Cities, ", "))
		}
	case domain.StepDetails:
		fmt.Fprintf(b, "Contact: `%s %s`\n\n", view.ContactPrefix, field(domain.FieldContact))
	case domain.StepSpaceType:
		if view.ShowOtherInput {
			fmt.Fprintf(b, "Please specify: `%s`\n\n", field(domain.FieldOtherSpaceType))
		}
	}
}

// selectedChoice returns the stored value of the field the step's choices write.
func selectedChoice(view domain.View) string {
	name := choiceField(view.Step)
	if name == "" {
		return ""
	}
	return fieldString(view, name)
}

func fieldString(view domain.View, name string) string {
	v, ok := view.Fields[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func hints(view domain.View) string {
	var cmds []string
	if len(view.Copy.Choices) > 0 {
		cmds = append(cmds, "`1-"+fmt.Sprint(len(view.Copy.Choices))+"` choose")
	}
	switch view.Step {
	case domain.StepLocationEntry:
		switch view.LocationBranch {
		case domain.PresenceYes:
			cmds = append(cmds, "`locate` fetch")
		case domain.PresenceNo:
			cmds = append(cmds, "`manual state, district, city, landmark`")
		}
	case domain.StepDetails:
		cmds = append(cmds, "`contact=<10 digits>`")
	}
	if view.CanBack {
		cmds = append(cmds, "`back`")
	}
	cmds = append(cmds, "`next` "+strings.ToLower(view.NextLabel), "`quit`")
	return strings.Join(cmds, " · ") + "\n"
}

func progressBar(p float64) string {
	filled := int(p*progressWidth + 0.5)
	if filled > progressWidth {
		filled = progressWidth
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + fmt.Sprintf(" %d%%", int(p*100+0.5))
}
