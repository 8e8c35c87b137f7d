package loam

import "github.com/aretw0/spotlist/pkg/domain"

// CopyMetadata is the frontmatter of a step copy document.
//
//	---
//	step: owner_type
//	title: Do you own your own parking slot?
//	choices:
//	  - value: commercial
//	    title: Commercial Parking
//	---
//	Optional markdown body.
type CopyMetadata struct {
	// Step names the step the document belongs to. Defaults to the file name.
	Step    string          `json:"step" mapstructure:"step"`
	Title   string          `json:"title" mapstructure:"title"`
	Prompt  string          `json:"prompt" mapstructure:"prompt"`
	Choices []domain.Choice `json:"choices" mapstructure:"choices"`
}
