package engineopts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/formcalc/engineopts"
	"github.com/nsforge/formcalc/value"
	"github.com/nsforge/formcalc/vars"
)

func TestBuild_DefaultsApplied(t *testing.T) {
	t.Parallel()

	cfg, err := engineopts.Build()
	require.NoError(t, err)
	assert.NotNil(t, cfg.Handler())
	assert.GreaterOrEqual(t, cfg.WorkerPoolSize(), 1)
	assert.Nil(t, cfg.VariableProvider())
}

func TestBuild_WithWorkerPoolSize(t *testing.T) {
	t.Parallel()

	cfg, err := engineopts.Build(engineopts.WithWorkerPoolSize(1))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.WorkerPoolSize())
}

func TestBuild_InvalidWorkerPoolSize(t *testing.T) {
	t.Parallel()

	_, err := engineopts.Build(engineopts.WithWorkerPoolSize(0))
	require.Error(t, err)
}

func TestBuild_WithVariableProvider(t *testing.T) {
	t.Parallel()

	p := vars.NewStaticProvider(map[string]value.Value{"x": value.NewNumber(1)})
	cfg, err := engineopts.Build(engineopts.WithVariableProvider(p))
	require.NoError(t, err)
	require.NotNil(t, cfg.VariableProvider())

	got, err := cfg.VariableProvider().GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
