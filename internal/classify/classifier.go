// Package classify labels course records as STEM or not and as public or
// private.
package classify

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/microdata"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/model"
	"github.com/Francelinojr/Geografia-da-Desigualdade/internal/taxonomy"
)

// Classifier is built from immutable taxonomy tables; it is safe for
// concurrent use.
type Classifier struct {
	stem         taxonomy.STEM
	institutions taxonomy.Institutions
	keywords     []string // NFC, upper case
}

// New creates a Classifier.
func New(stem taxonomy.STEM, institutions taxonomy.Institutions) *Classifier {
	c := &Classifier{stem: stem, institutions: institutions}
	for _, k := range stem.Keywords() {
		c.keywords = append(c.keywords, fold(k))
	}
	return c
}

// FromTaxonomy creates a Classifier from a bundled taxonomy.
func FromTaxonomy(t taxonomy.Taxonomy) *Classifier {
	return New(t.STEM, t.Institutions)
}

// IsSTEM applies the two-tier rule: a record carrying an area code is
// classified by the whitelist alone; otherwise by keyword match on the area
// name.
func (c *Classifier) IsSTEM(areaCode, areaName string) bool {
	if strings.TrimSpace(areaCode) != "" {
		return c.stem.HasCode(areaCode)
	}
	return c.MatchesKeyword(areaName)
}

// MatchesKeyword reports whether the area name contains any STEM keyword,
// ignoring case and Unicode composition.
func (c *Classifier) MatchesKeyword(areaName string) bool {
	if areaName == "" {
		return false
	}
	name := fold(areaName)
	for _, k := range c.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// Type maps a raw administrative category to public or private. Unparseable
// values take the taxonomy's default category.
func (c *Classifier) Type(adminCategory string) model.InstitutionType {
	cat := microdata.ParseIntOr(adminCategory, c.institutions.DefaultCategory())
	if c.institutions.IsPublic(cat) {
		return model.Public
	}
	return model.Private
}

// Classify returns classified copies of records. Every record is kept.
func (c *Classifier) Classify(records []model.CourseRecord) []model.CourseRecord {
	out := make([]model.CourseRecord, len(records))
	for i, r := range records {
		r.STEM = c.IsSTEM(r.AreaCode, r.AreaName)
		r.InstitutionType = c.Type(r.AdminCategory)
		out[i] = r
	}
	return out
}

func fold(s string) string {
	return norm.NFC.String(strings.ToUpper(s))
}
