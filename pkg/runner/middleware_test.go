package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/spotlist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIOHandler records output and replays scripted input.
type MockIOHandler struct {
	Views         []domain.View
	System        []string
	InputBehavior func() (string, error)
}

func (m *MockIOHandler) Output(ctx context.Context, view domain.View) error {
	m.Views = append(m.Views, view)
	return nil
}

func (m *MockIOHandler) Input(ctx context.Context) (string, error) {
	if m.InputBehavior != nil {
		return m.InputBehavior()
	}
	return "", nil
}

func (m *MockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.System = append(m.System, msg)
	return nil
}

func TestConfirmSubmit(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{" YES ", true},
		{"n", false},
		{"", false},
		{"sure", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mock := &MockIOHandler{InputBehavior: func() (string, error) { return tt.input, nil }}
			allowed, err := ConfirmSubmit(mock)(context.Background(), domain.View{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
			assert.Equal(t, []string{"Submit this listing? [y/N]"}, mock.System)
		})
	}
}

func TestConfirmSubmit_InputError(t *testing.T) {
	boom := errors.New("boom")
	mock := &MockIOHandler{InputBehavior: func() (string, error) { return "", boom }}

	allowed, err := ConfirmSubmit(mock)(context.Background(), domain.View{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, allowed)
}

func TestMultiGuard(t *testing.T) {
	deny := func(ctx context.Context, view domain.View) (bool, error) { return false, nil }
	called := false
	spy := func(ctx context.Context, view domain.View) (bool, error) {
		called = true
		return true, nil
	}

	allowed, err := MultiGuard(AutoApprove(), deny, spy)(context.Background(), domain.View{})
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.False(t, called, "the chain stops at the first refusal")

	allowed, err = MultiGuard(AutoApprove(), spy)(context.Background(), domain.View{})
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.True(t, called)
}

func TestRunner_WithMockHandler(t *testing.T) {
	script := []string{"9", "commercial", "next", "back", "quit"}
	mock := &MockIOHandler{}
	mock.InputBehavior = func() (string, error) {
		line := script[0]
		script = script[1:]
		return line, nil
	}

	state, err := NewRunner(newEngine(), WithInputHandler(mock)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StepOwnerType, state.Step)
	assert.Equal(t, domain.OwnerCommercial, state.OwnerType)
	require.NotEmpty(t, mock.System)
	assert.Contains(t, mock.System[0], "unrecognized input")
	require.Len(t, mock.Views, 5)
	assert.Equal(t, domain.StepLocationEntry, mock.Views[3].Step)
}
