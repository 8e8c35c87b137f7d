package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/spotlist/internal/config"
	"github.com/aretw0/spotlist/internal/logging"
	"github.com/aretw0/spotlist/internal/testutils"
	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_BuiltInCopy(t *testing.T) {
	app := newApp(t, nil, AppOptions{})

	report, err := Validate(context.Background(), app)
	require.NoError(t, err)
	assert.Empty(t, report.Overrides)
	assert.Empty(t, report.SubmitHooks)
	assert.Equal(t, "environment", report.Locator)
}

func TestValidate_CatalogAndHooks(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"copy/complete.md": "---\ntitle: All Done!\n---\nWe will call you.",
		"hooks.yaml": `submit:
  - name: crm
    command: ./push.sh
locator:
  command: termux-location
`,
	})

	app := newApp(t, func(c *config.Config) {
		c.Catalog.Dir = filepath.Join(dir, "copy")
	}, AppOptions{HooksPath: filepath.Join(dir, "hooks.yaml")})

	report, err := Validate(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, []domain.Step{domain.StepComplete}, report.Overrides)
	assert.Equal(t, []string{"crm"}, report.SubmitHooks)
	assert.Equal(t, "termux-location", report.Locator)
}

func TestValidate_UnknownStepDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payment.md"), []byte("---\ntitle: Pay\n---"), 0o644))

	cfg := config.Default()
	cfg.Catalog.Dir = dir
	app, err := NewApp(&cfg, logging.NewNop(), AppOptions{})
	require.NoError(t, err)

	_, err = Validate(context.Background(), app)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}
