package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/kingdom/internal/scripting"
)

func TestCompile_SyntaxError(t *testing.T) {
	_, err := scripting.Compile(`return (`)
	assert.Error(t, err)
	_, err = scripting.Compile(`return true`)
	assert.NoError(t, err)
}

func TestPredicates_EvalGlobals(t *testing.T) {
	p := scripting.NewPredicates(0, zap.NewNop())
	globals := map[string]any{
		"kingdom": map[string]any{
			"level":  3,
			"name":   "Stolen Lands",
			"feats":  map[string]bool{"civil_service": true},
			"skills": map[string]string{"trade": "trained"},
		},
		"inputs": map[string]string{"work_site": "mine"},
	}

	ok, err := p.Eval(`return kingdom.level >= 3 and kingdom.feats.civil_service`, globals)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Eval(`return inputs.work_site == "farm"`, globals)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Eval(`return kingdom.skills.trade == "trained"`, globals)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPredicates_NilResultIsFalse(t *testing.T) {
	p := scripting.NewPredicates(0, zap.NewNop())
	ok, err := p.Eval(`local x = 1`, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredicates_RuntimeErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := scripting.NewPredicates(0, zap.New(core))
	ok, err := p.Eval(`return nosuch.field`, nil)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.Len())
}

func TestPredicates_InstructionLimit(t *testing.T) {
	p := scripting.NewPredicates(50, zap.NewNop())
	_, err := p.Eval(`while true do end return true`, nil)
	assert.Error(t, err)
}
