package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/aretw0/spotlist/pkg/ports"
)

// Catalog adapts a Loam repository of markdown documents to ports.CopyCatalog.
// Each document overrides the copy of one step; anything it leaves blank
// comes from the fallback catalog.
type Catalog struct {
	Repo     *loam.TypedRepository[CopyMetadata]
	fallback ports.CopyCatalog
}

// New creates a catalog over an initialised repository.
func New(repo *loam.TypedRepository[CopyMetadata], fallback ports.CopyCatalog) *Catalog {
	return &Catalog{Repo: repo, fallback: fallback}
}

// Open initialises a read-only Loam repository at dir.
func Open(dir string, fallback ports.CopyCatalog) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric frontmatter consistent; read-only avoids Loam's dev sandbox.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[CopyMetadata](repo), fallback), nil
}

// StepCopy returns the copy of step, merged over the fallback.
func (c *Catalog) StepCopy(ctx context.Context, step domain.Step) (domain.StepCopy, error) {
	var base domain.StepCopy
	if c.fallback != nil {
		var err error
		base, err = c.fallback.StepCopy(ctx, step)
		if err != nil {
			return domain.StepCopy{}, err
		}
	}

	meta, body, err := c.lookup(ctx, step)
	if err != nil {
		if c.fallback != nil {
			return base, nil
		}
		return domain.StepCopy{}, err
	}
	return merge(base, meta, body), nil
}

// lookup finds the document of step by file name first, then by its "step" key.
func (c *Catalog) lookup(ctx context.Context, step domain.Step) (CopyMetadata, string, error) {
	doc, err := c.Repo.Get(ctx, step.String())
	if err == nil {
		return doc.Data, doc.Content, nil
	}

	docs, listErr := c.Repo.List(ctx)
	if listErr != nil {
		return CopyMetadata{}, "", fmt.Errorf("loam list failed: %w", listErr)
	}
	for _, d := range docs {
		if d.Data.Step == step.String() {
			return d.Data, d.Content, nil
		}
	}
	return CopyMetadata{}, "", fmt.Errorf("loam get failed for %s: %w", step, err)
}

func merge(base domain.StepCopy, meta CopyMetadata, body string) domain.StepCopy {
	out := base
	if meta.Title != "" {
		out.Title = meta.Title
	}
	if meta.Prompt != "" {
		out.Prompt = meta.Prompt
	}
	if len(meta.Choices) > 0 {
		out.Choices = meta.Choices
	}
	if body = strings.TrimSpace(body); body != "" {
		out.Body = body
	}
	return out
}

// Overrides lists the steps the repository provides copy for.
// It fails on documents that name an unknown step or collide on the same step.
func (c *Catalog) Overrides(ctx context.Context) ([]domain.Step, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[domain.Step]string)
	steps := make([]domain.Step, 0, len(docs))
	for _, doc := range docs {
		name := doc.Data.Step
		if name == "" {
			name = trimExtension(doc.ID)
		}
		step, err := domain.ParseStep(name)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		if existing, ok := seen[step]; ok {
			return nil, fmt.Errorf("collision detected: step '%s' is defined in both '%s' and '%s'", step, existing, doc.ID)
		}
		seen[step] = doc.ID
		steps = append(steps, step)
	}
	return steps, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	return filepath.ToSlash(strings.TrimSuffix(id, ext))
}
