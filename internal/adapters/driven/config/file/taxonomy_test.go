package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

func TestTaxonomyLoader_Load(t *testing.T) {
	dir := t.TempDir()
	content := `roles:
  ops:
    keywords: [incident, pager]
  developer:
    keywords:
      - deploy
      - rollback
    projects: [platform]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TaxonomyFileName), []byte(content), 0600))

	loader := NewTaxonomyLoader("", dir)
	tax, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.TaxonomyFromFile, tax.Source)
	assert.Equal(t, filepath.Join(dir, TaxonomyFileName), tax.Path)
	require.Len(t, tax.Roles, 2)
	assert.Equal(t, "developer", tax.Roles[0].Name)
	assert.Equal(t, []string{"deploy", "rollback"}, tax.Roles[0].Keywords)
	assert.Equal(t, []string{"platform"}, tax.Roles[0].Projects)
	assert.Equal(t, "ops", tax.Roles[1].Name)
	assert.Empty(t, tax.Roles[1].Projects)
}

func TestTaxonomyLoader_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	tax, err := NewTaxonomyLoader(path, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TaxonomyEmpty, tax.Source)
	assert.True(t, tax.IsEmpty())
	assert.Equal(t, path, tax.Path)
}

func TestTaxonomyLoader_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	tax, err := NewTaxonomyLoader(path, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TaxonomyFromFile, tax.Source)
	assert.True(t, tax.IsEmpty())
}

func TestTaxonomyLoader_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles: [unclosed"), 0600))

	_, err := NewTaxonomyLoader(path, "").Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
