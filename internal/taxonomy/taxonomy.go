// Package taxonomy holds the immutable code tables used to resolve geography
// and classify course records: Brazilian states and regions, the STEM area
// whitelist and keyword fallback, and the administrative categories that count
// as public institutions.
package taxonomy

import (
	"sort"
	"strconv"
	"strings"
)

// Region names as published in the INEP microdata.
const (
	RegionNorth       = "Norte"
	RegionNortheast   = "Nordeste"
	RegionSoutheast   = "Sudeste"
	RegionSouth       = "Sul"
	RegionCentralWest = "Centro-Oeste"
)

// State is one row of the state table: IBGE numeric code, two-letter
// abbreviation and region.
type State struct {
	Code   int    `yaml:"code"`
	Abbrev string `yaml:"abbrev"`
	Region string `yaml:"region"`
}

// defaultStates lists the 27 federative units.
var defaultStates = []State{
	{11, "RO", RegionNorth}, {12, "AC", RegionNorth}, {13, "AM", RegionNorth},
	{14, "RR", RegionNorth}, {15, "PA", RegionNorth}, {16, "AP", RegionNorth},
	{17, "TO", RegionNorth},
	{21, "MA", RegionNortheast}, {22, "PI", RegionNortheast}, {23, "CE", RegionNortheast},
	{24, "RN", RegionNortheast}, {25, "PB", RegionNortheast}, {26, "PE", RegionNortheast},
	{27, "AL", RegionNortheast}, {28, "SE", RegionNortheast}, {29, "BA", RegionNortheast},
	{31, "MG", RegionSoutheast}, {32, "ES", RegionSoutheast}, {33, "RJ", RegionSoutheast},
	{35, "SP", RegionSoutheast},
	{41, "PR", RegionSouth}, {42, "SC", RegionSouth}, {43, "RS", RegionSouth},
	{50, "MS", RegionCentralWest}, {51, "MT", RegionCentralWest}, {52, "GO", RegionCentralWest},
	{53, "DF", RegionCentralWest},
}

// Regions maps state abbreviations and numeric state codes to regions.
// The zero value resolves nothing; build one with NewRegions or DefaultRegions.
type Regions struct {
	byAbbrev    map[string]string
	byCode      map[int]string
	abbrevCode  map[int]string
	orderedKeys []int
}

// NewRegions builds a Regions table from the given states. The input slice is
// copied, later changes to it have no effect.
func NewRegions(states []State) Regions {
	r := Regions{
		byAbbrev:   make(map[string]string, len(states)),
		byCode:     make(map[int]string, len(states)),
		abbrevCode: make(map[int]string, len(states)),
	}
	for _, s := range states {
		abbrev := strings.ToUpper(strings.TrimSpace(s.Abbrev))
		if abbrev != "" {
			r.byAbbrev[abbrev] = s.Region
		}
		if s.Code > 0 {
			r.byCode[s.Code] = s.Region
			if abbrev != "" {
				r.abbrevCode[s.Code] = abbrev
			}
			r.orderedKeys = append(r.orderedKeys, s.Code)
		}
	}
	sort.Ints(r.orderedKeys)
	return r
}

// DefaultRegions returns the IBGE state table.
func DefaultRegions() Regions {
	return NewRegions(defaultStates)
}

// RegionOfState returns the region of a two-letter state abbreviation.
func (r Regions) RegionOfState(abbrev string) (string, bool) {
	region, ok := r.byAbbrev[strings.ToUpper(strings.TrimSpace(abbrev))]
	return region, ok
}

// RegionOfCode returns the region of a numeric state code.
func (r Regions) RegionOfCode(code int) (string, bool) {
	region, ok := r.byCode[code]
	return region, ok
}

// StateOfCode returns the two-letter abbreviation of a numeric state code.
func (r Regions) StateOfCode(code int) (string, bool) {
	abbrev, ok := r.abbrevCode[code]
	return abbrev, ok
}

// States returns the table rows ordered by numeric code.
func (r Regions) States() []State {
	out := make([]State, 0, len(r.orderedKeys))
	for _, code := range r.orderedKeys {
		out = append(out, State{Code: code, Abbrev: r.abbrevCode[code], Region: r.byCode[code]})
	}
	return out
}

// Len returns the number of numeric state codes known.
func (r Regions) Len() int { return len(r.byCode) }

// STEM decides whether a course area belongs to STEM.
type STEM struct {
	codes    map[string]struct{}
	keywords []string
}

// DefaultSTEMCodes are the CINE general areas 05 (natural sciences,
// mathematics and statistics), 06 (ICT) and 07 (engineering, production and
// construction).
var DefaultSTEMCodes = []string{"05", "06", "07"}

// DefaultSTEMKeywords is the keyword fallback for records without an area code.
var DefaultSTEMKeywords = []string{
	"CIÊNCIAS NATURAIS", "MATEMÁTICA", "ESTATÍSTICA",
	"COMPUTAÇÃO", "TIC", "ENGENHARIA", "PRODUÇÃO", "CONSTRUÇÃO",
}

// NewSTEM builds a STEM taxonomy. Codes are normalized to two digits and
// keywords to upper case.
func NewSTEM(codes, keywords []string) STEM {
	s := STEM{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if n, ok := NormalizeAreaCode(c); ok {
			s.codes[n] = struct{}{}
		}
	}
	for _, k := range keywords {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k != "" {
			s.keywords = append(s.keywords, k)
		}
	}
	return s
}

// DefaultSTEM returns the CINE whitelist with the Portuguese keyword list.
func DefaultSTEM() STEM {
	return NewSTEM(DefaultSTEMCodes, DefaultSTEMKeywords)
}

// HasCode reports whether the area code is in the whitelist.
func (s STEM) HasCode(code string) bool {
	n, ok := NormalizeAreaCode(code)
	if !ok {
		return false
	}
	_, hit := s.codes[n]
	return hit
}

// Keywords returns a copy of the keyword list.
func (s STEM) Keywords() []string {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out
}

// Codes returns the whitelist codes in ascending order.
func (s STEM) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// NormalizeAreaCode formats a raw area code ("5", "05", "5.0") as two digits.
func NormalizeAreaCode(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f != float64(int64(f)) {
		return "", false
	}
	n := strconv.FormatInt(int64(f), 10)
	if len(n) == 1 {
		n = "0" + n
	}
	return n, true
}

// Institutions maps administrative categories to public or private.
type Institutions struct {
	public          map[int]struct{}
	defaultCategory int
}

// DefaultPublicCategories are federal, state and municipal institutions.
var DefaultPublicCategories = []int{1, 2, 3}

// DefaultCategory is used when the administrative category does not parse.
const DefaultCategory = 9

// NewInstitutions builds the category table.
func NewInstitutions(public []int, defaultCategory int) Institutions {
	in := Institutions{public: make(map[int]struct{}, len(public)), defaultCategory: defaultCategory}
	for _, c := range public {
		in.public[c] = struct{}{}
	}
	return in
}

// DefaultInstitutions returns categories 1–3 as public and 9 as the default.
func DefaultInstitutions() Institutions {
	return NewInstitutions(DefaultPublicCategories, DefaultCategory)
}

// IsPublic reports whether the category is a public one.
func (in Institutions) IsPublic(category int) bool {
	_, ok := in.public[category]
	return ok
}

// DefaultCategory returns the category assigned to unparsable values.
func (in Institutions) DefaultCategory() int { return in.defaultCategory }

// Taxonomy bundles the three tables.
type Taxonomy struct {
	Regions      Regions
	STEM         STEM
	Institutions Institutions
}

// Default returns the built-in taxonomy.
func Default() Taxonomy {
	return Taxonomy{
		Regions:      DefaultRegions(),
		STEM:         DefaultSTEM(),
		Institutions: DefaultInstitutions(),
	}
}
