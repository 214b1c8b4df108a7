package targets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/internal/log"
)

func TestResolveTargets_Explicit(t *testing.T) {
	r := NewResolver(map[string]string{
		"explicit": "testdata/explicit.template.json",
		"missing":  "testdata/nope.json",
	}, "testdata/cdk.out", log.NewNopLogger())

	got, err := r.ResolveTargets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"explicit": "testdata/explicit.template.json"}, got)
}

func TestResolveTargets_FallsBackToManifest(t *testing.T) {
	r := NewResolver(map[string]string{"missing": "testdata/nope.json"}, "testdata/cdk.out", log.NewNopLogger())

	got, err := r.ResolveTargets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"AppStack": filepath.Join("testdata", "cdk.out", "AppStack.template.json"),
	}, got)
}

func TestResolveTargets_NoAssembly(t *testing.T) {
	r := NewResolver(nil, "testdata/does-not-exist", log.NewNopLogger())

	got, err := r.ResolveTargets(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveTargets_AssemblyWithoutManifest(t *testing.T) {
	r := NewResolver(nil, "testdata/empty.out", log.NewNopLogger())

	_, err := r.ResolveTargets(context.Background())

	assert.True(t, errors.Is(err, errors.CodeTargetResolution))
}

func TestParseStackPairs(t *testing.T) {
	got := ParseStackPairs("app = templates/app.yaml;db=templates/db.json\nbroken\n=nameless\nempty=\r\nlast=x.yml")
	assert.Equal(t, map[string]string{
		"app":  "templates/app.yaml",
		"db":   "templates/db.json",
		"last": "x.yml",
	}, got)
	assert.Empty(t, ParseStackPairs(""))
}
