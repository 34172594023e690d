package microdata

// Course file columns (MICRODADOS_CADASTRO_CURSOS).
const (
	ColRegion        = "NO_REGIAO"
	ColState         = "SG_UF"
	ColStateCode     = "CO_UF"
	ColMunicipality  = "NO_MUNICIPIO"
	ColMunicipalCode = "CO_MUNICIPIO"
	ColAdminCategory = "TP_CATEGORIA_ADMINISTRATIVA"
	ColCINEAreaName  = "NO_CINE_AREA_GERAL"
	ColOCDEAreaName  = "NO_OCDE_AREA_GERAL"
	ColCINEAreaCode  = "CO_CINE_AREA_GERAL"
	ColEnrolled      = "QT_MAT"
	ColEnrolledFem   = "QT_MAT_FEM"
	ColIntake        = "QT_ING"
	ColCompleted     = "QT_CONC"
	ColInstitution   = "CO_IES"
)

// Institution file columns (MICRODADOS_CADASTRO_IES / MICRODADOS_ED_SUP_IES).
const (
	ColMicroRegionIES     = "NO_MICRORREGIAO_IES"
	ColMicroRegionCodeIES = "CO_MICRORREGIAO_IES"
	ColMunicipalityIES    = "NO_MUNICIPIO_IES"
	ColMunicipalCodeIES   = "CO_MUNICIPIO_IES"
	ColStateIES           = "SG_UF_IES"
	ColRegionIES          = "NO_REGIAO_IES"
	ColStateCodeIES       = "CO_UF_IES"
)

// AreaNameColumns lists the area-name columns in preference order: the CINE
// taxonomy (2019+) and the older OCDE one.
var AreaNameColumns = []string{ColCINEAreaName, ColOCDEAreaName}

// InstitutionGeoColumns are the institution-file columns used to backfill
// course geography.
var InstitutionGeoColumns = []string{
	ColInstitution, ColMicroRegionIES, ColMicroRegionCodeIES,
	ColMunicipalityIES, ColMunicipalCodeIES, ColStateIES, ColRegionIES, ColStateCodeIES,
}
