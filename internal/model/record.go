package model

// InstitutionType is the public/private split of administrative categories.
type InstitutionType string

const (
	Public  InstitutionType = "Pública"
	Private InstitutionType = "Privada"
)

// CourseRecord is one course-offering row of a yearly course file, after
// geography resolution and institution backfill. EnrolledFemale may exceed
// Enrolled in the source data; it is carried unchanged.
type CourseRecord struct {
	Year             int    `json:"year"`
	Region           string `json:"region"`
	State            string `json:"state"`
	MunicipalityName string `json:"municipality_name"`
	MunicipalityCode string `json:"municipality_code"`
	MicroRegionName  string `json:"micro_region_name,omitempty"`
	MicroRegionCode  string `json:"micro_region_code,omitempty"`
	AdminCategory    string `json:"admin_category"`
	AreaCode         string `json:"area_code,omitempty"` // empty when the year or row has no code
	AreaName         string `json:"area_name"`
	Enrolled         int64  `json:"enrolled"`
	EnrolledFemale   int64  `json:"enrolled_female"`
	HasFlow          bool   `json:"has_flow"` // Intake/Completed come from the source year
	Intake           int64  `json:"intake,omitempty"`
	Completed        int64  `json:"completed,omitempty"`
	InstitutionID    string `json:"institution_id"`

	// Set by the classifier.
	STEM            bool            `json:"stem"`
	InstitutionType InstitutionType `json:"institution_type,omitempty"`
}

// GeoKey identifies a geographic unit at one level. For municipalities Name and
// Code are the municipality's; for micro-regions, the micro-region's; the region
// level uses Region only. Code is the stable identifier, Name is display only.
type GeoKey struct {
	Region string `json:"region"`
	State  string `json:"state,omitempty"`
	Name   string `json:"name,omitempty"`
	Code   string `json:"code,omitempty"`
}

// Less orders keys by region, state, name, then code.
func (k GeoKey) Less(o GeoKey) bool {
	if k.Region != o.Region {
		return k.Region < o.Region
	}
	if k.State != o.State {
		return k.State < o.State
	}
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	return k.Code < o.Code
}

// MunicipalityKey returns the record's municipality identity.
func (r CourseRecord) MunicipalityKey() GeoKey {
	return GeoKey{Region: r.Region, State: r.State, Name: r.MunicipalityName, Code: r.MunicipalityCode}
}

// MicroRegionKey returns the record's micro-region identity.
func (r CourseRecord) MicroRegionKey() GeoKey {
	return GeoKey{Region: r.Region, State: r.State, Name: r.MicroRegionName, Code: r.MicroRegionCode}
}

// InstitutionGeo is the geography of one institution, used to fill gaps in
// course-record geography.
type InstitutionGeo struct {
	InstitutionID    string `json:"institution_id"`
	MicroRegionName  string `json:"micro_region_name,omitempty"`
	MicroRegionCode  string `json:"micro_region_code,omitempty"`
	MunicipalityName string `json:"municipality_name,omitempty"`
	MunicipalityCode string `json:"municipality_code,omitempty"`
	State            string `json:"state,omitempty"`
	Region           string `json:"region,omitempty"`
}
