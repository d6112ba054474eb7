package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santavideo/pipeline"
)

func writeCatalogFixtures(t *testing.T, templates, scripts string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates.json"), []byte(templates), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts.json"), []byte(scripts), 0644))
	return dir
}

const testTemplates = `[
  {"id": "classic-santa", "name": "Classic Santa", "description": "Santa in his workshop", "duration": 60, "price": 19.99},
  {"id": "north-pole", "name": "North Pole", "description": "Santa at the North Pole", "duration": 90, "price": 24.99, "video": "north-pole.mp4"}
]`

const testScripts = `[
  {"id": "s1", "title": "Greeting", "text": "Ho ho ho, {name}!", "duration": 8, "category": "greeting"},
  {"id": "g1", "title": "Goodbye", "text": "Merry Christmas, {name}!", "duration": 6, "category": "goodbye"}
]`

func TestCatalogLookups(t *testing.T) {
	dir := writeCatalogFixtures(t, testTemplates, testScripts)
	catalog := NewCatalog(dir)

	templates, err := catalog.Templates()
	require.NoError(t, err)
	assert.Len(t, templates, 2)

	template, err := catalog.TemplateByID("north-pole")
	require.NoError(t, err)
	assert.Equal(t, "North Pole", template.Name)

	script, err := catalog.ScriptByID("g1")
	require.NoError(t, err)
	assert.Equal(t, "goodbye", script.Category)

	_, err = catalog.TemplateByID("no-such-template")
	var notFoundErr *pipeline.NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))
}

func TestCatalogCachesUntilInvalidated(t *testing.T) {
	dir := writeCatalogFixtures(t, testTemplates, testScripts)
	catalog := NewCatalog(dir)

	_, err := catalog.Templates()
	require.NoError(t, err)

	// A cached catalog must not see file changes
	updated := `[{"id": "new-one", "name": "New", "description": "", "duration": 30, "price": 9.99}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates.json"), []byte(updated), 0644))

	templates, err := catalog.Templates()
	require.NoError(t, err)
	assert.Len(t, templates, 2)

	catalog.Invalidate()

	templates, err = catalog.Templates()
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "new-one", templates[0].ID)
}

func TestCatalogMissingFile(t *testing.T) {
	catalog := NewCatalog(t.TempDir())
	_, err := catalog.Templates()
	assert.Error(t, err)
}
