package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure TaxonomyLoader implements the interface.
var _ driven.TaxonomyLoader = (*TaxonomyLoader)(nil)

// TaxonomyFileName is the default taxonomy file inside the config directory.
const TaxonomyFileName = "role_taxonomy.yaml"

// TaxonomyLoader reads a role taxonomy from a YAML file of the form:
//
//	roles:
//	  developer:
//	    keywords: [deploy, rollback]
//	    projects: [platform]
type TaxonomyLoader struct {
	path string
}

// NewTaxonomyLoader creates a loader for path.
// If path is empty, defaults to role_taxonomy.yaml in configDir.
func NewTaxonomyLoader(path, configDir string) *TaxonomyLoader {
	if path == "" {
		path = filepath.Join(configDir, TaxonomyFileName)
	}
	return &TaxonomyLoader{path: path}
}

// Path returns the taxonomy file path.
func (l *TaxonomyLoader) Path() string {
	return l.path
}

type taxonomyFile struct {
	Roles map[string]struct {
		Keywords []string `yaml:"keywords"`
		Projects []string `yaml:"projects"`
	} `yaml:"roles"`
}

// Load reads the taxonomy. A missing file returns domain.EmptyTaxonomy.
func (l *TaxonomyLoader) Load(ctx context.Context) (domain.Taxonomy, error) {
	if err := ctx.Err(); err != nil {
		return domain.Taxonomy{}, err
	}

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.EmptyTaxonomy(l.path), nil
	}
	if err != nil {
		return domain.Taxonomy{}, fmt.Errorf("reading taxonomy %s: %w", l.path, err)
	}

	var parsed taxonomyFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return domain.Taxonomy{}, fmt.Errorf("%w: parsing taxonomy %s: %v", domain.ErrInvalidInput, l.path, err)
	}

	roles := make([]domain.Role, 0, len(parsed.Roles))
	for name, r := range parsed.Roles {
		roles = append(roles, domain.Role{Name: name, Keywords: r.Keywords, Projects: r.Projects})
	}
	return domain.NewTaxonomy(l.path, roles), nil
}
