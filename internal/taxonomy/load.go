package taxonomy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a taxonomy override. Sections left out keep the
// built-in defaults.
type File struct {
	States []State `yaml:"states"`
	STEM   *struct {
		Codes    []string `yaml:"codes"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"stem"`
	Institutions *struct {
		PublicCategories []int `yaml:"public_categories"`
		DefaultCategory  *int  `yaml:"default_category"`
	} `yaml:"institutions"`
}

// Load reads a taxonomy override from a YAML file. An empty path returns the
// defaults.
func Load(path string) (Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, eris.Wrapf(err, "taxonomy: read %s", path)
	}
	return Parse(data)
}

// Parse builds a taxonomy from YAML bytes.
func Parse(data []byte) (Taxonomy, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Taxonomy{}, eris.Wrap(err, "taxonomy: parse yaml")
	}

	t := Default()
	if len(f.States) > 0 {
		for _, s := range f.States {
			if s.Region == "" {
				return Taxonomy{}, eris.Errorf("taxonomy: state %d (%s) has no region", s.Code, s.Abbrev)
			}
		}
		t.Regions = NewRegions(f.States)
	}
	if f.STEM != nil {
		codes, keywords := f.STEM.Codes, f.STEM.Keywords
		if codes == nil {
			codes = DefaultSTEMCodes
		}
		if keywords == nil {
			keywords = DefaultSTEMKeywords
		}
		t.STEM = NewSTEM(codes, keywords)
	}
	if f.Institutions != nil {
		public := f.Institutions.PublicCategories
		if public == nil {
			public = DefaultPublicCategories
		}
		def := DefaultCategory
		if f.Institutions.DefaultCategory != nil {
			def = *f.Institutions.DefaultCategory
		}
		t.Institutions = NewInstitutions(public, def)
	}
	return t, nil
}
