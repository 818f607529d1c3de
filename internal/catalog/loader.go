package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// catalogFile is the on-disk YAML shape of an external catalog.
type catalogFile struct {
	Skills    []domain.Skill                    `yaml:"skills"`
	Templates []domain.PipelineTemplate         `yaml:"templates"`
	Criteria  map[string]domain.QualityCriteria `yaml:"criteria"`
}

// Load reads a catalog from a YAML file and validates it with the same
// routine as the compiled defaults. Missing criteria fall back to the
// default criteria for skills that exist in both.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", hiveerrors.ErrCatalogInvalid, path, err)
	}

	if len(file.Skills) == 0 {
		return nil, fmt.Errorf("%w: %s defines no skills", hiveerrors.ErrCatalogInvalid, path)
	}

	criteria := file.Criteria
	if criteria == nil {
		criteria = make(map[string]domain.QualityCriteria)
	}
	defaults := defaultCriteria()
	for _, s := range file.Skills {
		if _, have := criteria[s.Name]; have {
			continue
		}
		if c, ok := defaults[s.Name]; ok {
			criteria[s.Name] = c
		}
	}

	return build(file.Skills, file.Templates, criteria)
}
