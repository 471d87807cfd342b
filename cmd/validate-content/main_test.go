package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidate_ShippedContent(t *testing.T) {
	sum, err := validate("../../content", zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, sum.Corruptions)
	assert.Positive(t, sum.Skills)
	assert.Positive(t, sum.Structures)
	assert.Positive(t, sum.Activities)
	assert.Positive(t, sum.Events)
	assert.Positive(t, sum.Feats)
	assert.Positive(t, sum.Milestones)
}

func TestValidate_MissingRoot(t *testing.T) {
	_, err := validate(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	assert.Error(t, err)
}

func TestValidate_MalformedTables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.yaml"), []byte("not: [valid"), 0o644))
	_, err := validate(dir, zap.NewNop())
	assert.Error(t, err)
}
