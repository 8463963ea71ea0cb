package engine

// Format is a normalized projection format.
// Values outside the known constants are the user-entered format, verbatim.
type Format string

const (
	FormatDCP  Format = "DCP"
	Format35mm Format = "35mm"
	Format70mm Format = "70mm"
	Format16mm Format = "16mm"
)

// IsFilm reports whether the format is a photochemical film gauge.
func (f Format) IsFilm() bool {
	return f == Format35mm || f == Format70mm || f == Format16mm
}

// RawRow is one feed row mapped from positional cells to named fields.
// Every field is a best-effort string; missing cells are empty.
type RawRow struct {
	Date           string
	Venue          string
	Title          string // May embed an <a href> anchor
	Director       string
	Runtime        string
	Format         string
	Times          string // Comma-separated, or a spreadsheet serial time
	Year           string
	Notes          string
	Blurb          string
	Programme      string // Nested programme entries (see ParseProgramme)
	ScreeningNotes string

	// Link is set by feeds that ship the title link as its own field.
	// An anchor embedded in Title takes precedence.
	Link string

	// Details is set by feeds that ship a prebuilt details line.
	// When non-empty it replaces the line built from the descriptive fields.
	Details string
}

// ScreeningRow is a RawRow after field normalization.
type ScreeningRow struct {
	Date           string
	Venue          string
	TitleText      string
	TitleLink      string
	Director       string
	Runtime        string
	Format         Format
	Times          []string // HH:MM, 24h when parsable
	Year           string
	Notes          string
	Blurb          string
	ScreeningNotes string
	Programme      []ProgrammeEntry
	Details        string
}

// ProgrammeEntry is a sub-film nested in a single screening, e.g. one short in a programme.
type ProgrammeEntry struct {
	Title    string `json:"title"`
	Director string `json:"director,omitempty"`
	Year     string `json:"year,omitempty"`
	Runtime  string `json:"runtime,omitempty"`
	Format   Format `json:"format,omitempty"`
}

// Film is the aggregated entry for one title at one venue on the query date.
// Descriptive fields come from the first row seen for the title; later rows
// only contribute additional show-times.
type Film struct {
	Title          string           `json:"title"`
	Link           string           `json:"link,omitempty"`
	Director       string           `json:"director,omitempty"`
	Runtime        string           `json:"runtime,omitempty"`
	Format         Format           `json:"format"`
	Year           string           `json:"year,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	Blurb          string           `json:"blurb,omitempty"`
	ScreeningNotes string           `json:"screening_notes,omitempty"`
	Programme      []ProgrammeEntry `json:"programme,omitempty"`
	Details        string           `json:"details"`
	Times          []string         `json:"times"`
}

// VenueGroup is the ordered set of films for a single venue.
type VenueGroup struct {
	Name  string  `json:"name"`
	Films []*Film `json:"films"`
}

// Listings is the render-ready result for one date.
type Listings struct {
	Date   string       `json:"date"`
	Venues []VenueGroup `json:"venues"`
}

// Empty reports whether the date has no listings at all.
func (l Listings) Empty() bool {
	return len(l.Venues) == 0
}

// Filters narrows aggregation to a subset of rows.
type Filters struct {
	LockedVenue string // Exact venue name; empty means all venues
	LockedTag   string // Festival/strand tag matched against notes
	FilmOnly    bool   // Only 35mm, 70mm and 16mm screenings
}

// Query describes one listings request.
type Query struct {
	Date    string // YYYY-MM-DD
	Filters Filters
}
