package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/spotlist/pkg/domain"
)

// Catalog is a CopyCatalog backed by a map.
type Catalog struct {
	steps map[domain.Step]domain.StepCopy
}

// NewCatalog creates a catalog from explicit copy.
// Steps without an entry fall back to the built-in text.
func NewCatalog(steps map[domain.Step]domain.StepCopy) *Catalog {
	merged := DefaultCopy()
	for step, c := range steps {
		merged[step] = c
	}
	return &Catalog{steps: merged}
}

// StepCopy returns the copy of step.
func (c *Catalog) StepCopy(ctx context.Context, step domain.Step) (domain.StepCopy, error) {
	sc, ok := c.steps[step]
	if !ok {
		return domain.StepCopy{}, fmt.Errorf("no copy for step %s: %w", step, domain.ErrInvalidValue)
	}
	return sc, nil
}

// DefaultCopy returns the launch text of every step.
func DefaultCopy() map[domain.Step]domain.StepCopy {
	return map[domain.Step]domain.StepCopy{
		domain.StepOwnerType: {
			Title: "Do you own your own parking slot?",
			Choices: []domain.Choice{
				{Value: string(domain.OwnerCommercial), Title: "Commercial Parking", Description: "A functional facility with a track record of accommodating vehicles."},
				{Value: string(domain.OwnerLand), Title: "Land", Description: "Not currently a parking facility, but I want to list it as one."},
				{Value: string(domain.OwnerOther), Title: "Other", Description: "None of the above match my situation."},
			},
		},
		domain.StepLocationEntry: {
			Title: "Are you at the Parking Spot now?",
			Choices: []domain.Choice{
				{Value: string(domain.PresenceYes), Title: "Yes", Description: "Fetch Location"},
				{Value: string(domain.PresenceNo), Title: "No", Description: "Search Location"},
			},
		},
		domain.StepDetails: {
			Title:  "Provide parking & contact details.",
			Prompt: "Approx. 4-wheeler slots available?",
			Choices: []domain.Choice{
				{Value: string(domain.SlotsUpTo20), Title: "Upto 20"},
				{Value: string(domain.Slots20To50), Title: "20-50"},
				{Value: string(domain.SlotsOver50), Title: "GT 50"},
			},
		},
		domain.StepSpaceType: {
			Title: "Tell us more about your space.",
			Choices: []domain.Choice{
				{Value: string(domain.SpaceWalled), Title: "Type-I", Description: "It's a walled-in area, i.e., it is surrounded by brick walls"},
				{Value: string(domain.SpaceOpen), Title: "Type-II", Description: "It's a non-walled-in area, i.e., an open space which is not walled"},
				{Value: string(domain.SpaceOther), Title: "Other", Description: "Neither of the above."},
			},
		},
		domain.StepComplete: {
			Title: "Submission Complete",
			Body:  "## Thank You!\n\nOur Outreach Team will contact you shortly!",
		},
	}
}
