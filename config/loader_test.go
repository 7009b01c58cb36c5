package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/relnotes/render"
)

func testLoader(t *testing.T, opts ...LoaderOption) *Loader {
	t.Helper()
	opts = append([]LoaderOption{
		WithAttributes(map[string]string{
			"release": "1.4.0",
			"date":    "2026-08-01",
			"commit":  "abc1234",
			"team":    "core",
		}),
		WithEnv(map[string]string{"CI": "true"}),
	}, opts...)
	l, err := NewLoader(opts...)
	require.NoError(t, err)
	return l
}

func TestLoader_Defaults(t *testing.T) {
	l := testLoader(t)
	settings, err := l.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "jira", settings.GetString("origin.type"))
	assert.Equal(t, "jsonpath", settings.GetString("mapping.language"))
	assert.Equal(t, "mustache", settings.GetString("mapping.engine"))
	assert.Equal(t, "skip", settings.GetString("notes.empty_note"))

	t.Run("attributes fill schema defaults", func(t *testing.T) {
		assert.Equal(t, "1.4.0", settings.GetString("release.code"))
		assert.Equal(t, "2026-08-01", settings.GetString("release.date"))
		assert.Equal(t, "abc1234", settings.GetString("release.commit"))
	})

	t.Run("delayed template stays deferred", func(t *testing.T) {
		v, ok := settings.Get("release.id_template")
		require.True(t, ok)
		field, ok := v.(*render.Field)
		require.True(t, ok, "id_template should be a deferred field, got %T", v)
		assert.Equal(t, "{{ticket_id}}", field.Raw)
		assert.True(t, field.Deferred)
	})

	t.Run("empty array defaults", func(t *testing.T) {
		v, ok := settings.Get("tags.include")
		require.True(t, ok)
		assert.Equal(t, []any{}, v)
	})
}

func TestLoader_UserOverrides(t *testing.T) {
	doc := []byte(`
origin:
  type: github
notes:
  tense: past
tags:
  include: [highlight]
  definitions:
    breaking:
      slug: breaking-change
    internal:
      drop: true
`)

	settings, err := testLoader(t).Load(doc)
	require.NoError(t, err)

	assert.Equal(t, "github", settings.GetString("origin.type"))
	assert.Equal(t, "past", settings.GetString("notes.tense"))
	assert.Equal(t, []string{"highlight"}, settings.GetStringSlice("tags.include"))

	t.Run("arbitrary entries get wildcard defaults", func(t *testing.T) {
		assert.Equal(t, "breaking-change", settings.GetString("tags.definitions.breaking.slug"))
		assert.False(t, settings.GetBool("tags.definitions.breaking.drop"))
		assert.True(t, settings.GetBool("tags.definitions.internal.drop"))
	})
}

func TestLoader_SentinelRemovesKey(t *testing.T) {
	doc := []byte(`
notes:
  empty_note: "$nil"
`)
	settings, err := testLoader(t).Load(doc)
	require.NoError(t, err)

	_, ok := settings.Get("notes.empty_note")
	assert.False(t, ok, "sentinel value should remove the key")

	// Siblings keep their defaults.
	assert.Equal(t, "Release note to follow.", settings.GetString("notes.placeholder"))
}

func TestLoader_TaggedValueRendersImmediately(t *testing.T) {
	doc := []byte(`extra: !mustache "Built by {{attrs.team}} (ci={{env.CI}})"`)
	settings, err := testLoader(t).Load(doc)
	require.NoError(t, err)

	assert.Equal(t, "Built by core (ci=true)", settings.GetString("extra"))
}

func TestLoader_DeferredMemo(t *testing.T) {
	doc := []byte(`
release:
  memo: "Shipping {{release.code}} with love"
`)
	settings, err := testLoader(t).Load(doc)
	require.NoError(t, err)

	out, err := settings.RenderDeferred("release.memo", map[string]any{
		"release": map[string]any{"code": "1.4.0"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Shipping 1.4.0 with love", out)

	t.Run("absent memo renders empty", func(t *testing.T) {
		defaults, err := testLoader(t).Load(nil)
		require.NoError(t, err)
		out, err := defaults.RenderDeferred("release.memo", nil)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})
}

func TestLoader_UnknownEngineFails(t *testing.T) {
	doc := []byte(`extra: !nope "value"`)
	_, err := testLoader(t).Load(doc)
	assert.ErrorIs(t, err, render.ErrUnsupportedEngine)
}

func TestLoader_BadTemplateFails(t *testing.T) {
	doc := []byte(`extra: !gotemplate "{{if}}"`)
	_, err := testLoader(t).Load(doc)

	var cerr *render.CompileError
	require.True(t, errors.As(err, &cerr), "error = %v, want *render.CompileError", err)
	assert.Equal(t, "extra", cerr.Path)
}

func TestLoader_MalformedDocument(t *testing.T) {
	_, err := testLoader(t).Load([]byte("- just\n- a\n- list\n"))
	assert.Error(t, err)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relnotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("origin:\n  type: github\n"), 0o644))

	settings, err := testLoader(t).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "github", settings.GetString("origin.type"))

	_, err = testLoader(t).LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
