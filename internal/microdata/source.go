package microdata

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// FileKind identifies one of the yearly microdata files.
type FileKind string

const (
	// Courses is MICRODADOS_CADASTRO_CURSOS_<year>.CSV.
	Courses FileKind = "cursos"
	// InstitutionsCadastro is MICRODADOS_CADASTRO_IES_<year>.CSV.
	InstitutionsCadastro FileKind = "cadastro_ies"
	// InstitutionsEdSup is MICRODADOS_ED_SUP_IES_<year>.CSV.
	InstitutionsEdSup FileKind = "ed_sup_ies"
)

var filePrefixes = map[FileKind]string{
	Courses:              "MICRODADOS_CADASTRO_CURSOS_",
	InstitutionsCadastro: "MICRODADOS_CADASTRO_IES_",
	InstitutionsEdSup:    "MICRODADOS_ED_SUP_IES_",
}

// FileName returns the canonical file name for a kind and year.
func FileName(kind FileKind, year int) string {
	return filePrefixes[kind] + strconv.Itoa(year) + ".CSV"
}

// Source yields raw microdata tables per year.
type Source interface {
	// Years returns the years for which a course file exists, ascending.
	Years(ctx context.Context) ([]int, error)

	// Read loads one file. A missing file is reported as a SourceError of kind
	// MissingSourceFile, a decoding failure as MalformedFile.
	Read(ctx context.Context, kind FileKind, year int) (*Table, error)
}

// FileSource reads microdata files from a local directory.
type FileSource struct {
	dir  string
	opts CSVOptions
}

// NewFileSource creates a source over dir. opts configures delimiter and
// encoding; header handling is set internally.
func NewFileSource(dir string, opts CSVOptions) *FileSource {
	return &FileSource{dir: dir, opts: opts}
}

// Dir returns the directory scanned.
func (s *FileSource) Dir() string { return s.dir }

// Years scans the directory for course files and extracts the year token
// from each file name. Names whose token is not a number are skipped.
func (s *FileSource) Years(_ context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "microdata: list %s", s.dir)
	}

	seen := make(map[int]bool)
	var years []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		year, ok := YearFromName(e.Name(), Courses)
		if !ok || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// YearFromName extracts the year from a microdata file name of the given kind.
func YearFromName(name string, kind FileKind) (int, bool) {
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".csv") {
		return 0, false
	}
	base := strings.TrimSuffix(name, ext)
	if !strings.HasPrefix(strings.ToUpper(base), filePrefixes[kind]) {
		return 0, false
	}
	token := base[strings.LastIndex(base, "_")+1:]
	year, err := strconv.Atoi(token)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// Read opens and parses the file for kind and year.
func (s *FileSource) Read(ctx context.Context, kind FileKind, year int) (*Table, error) {
	path, err := s.locate(kind, year)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Kind: MissingSourceFile, Year: year, Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	opts := s.opts
	opts.LazyQuotes = true
	t, err := ReadTable(ctx, f, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrapf(err, "microdata: read %s", path)
		}
		return nil, &SourceError{Kind: MalformedFile, Year: year, Path: path, Err: err}
	}
	return t, nil
}

// locate finds the file for kind and year among the directory entries,
// matching names the same way Years does. The canonical name wins when
// several entries match.
func (s *FileSource) locate(kind FileKind, year int) (string, error) {
	name := FileName(kind, year)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", &SourceError{Kind: MissingSourceFile, Year: year, Path: filepath.Join(s.dir, name), Err: err}
	}

	found := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		y, ok := YearFromName(e.Name(), kind)
		if !ok || y != year {
			continue
		}
		if e.Name() == name {
			return filepath.Join(s.dir, e.Name()), nil
		}
		if found == "" {
			found = e.Name()
		}
	}
	if found != "" {
		return filepath.Join(s.dir, found), nil
	}
	return "", &SourceError{
		Kind: MissingSourceFile,
		Year: year,
		Path: filepath.Join(s.dir, name),
		Err:  fs.ErrNotExist,
	}
}
