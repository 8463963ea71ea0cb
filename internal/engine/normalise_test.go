package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-listings/internal/engine"
)

func TestNormaliseFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want engine.Format
	}{
		{"", engine.FormatDCP},
		{"   ", engine.FormatDCP},
		{" ", engine.FormatDCP},
		{"Digital", engine.FormatDCP},
		{"dig", engine.FormatDCP},
		{"HD", engine.FormatDCP},
		{"dcp", engine.FormatDCP},
		{"4K", engine.FormatDCP},
		{"4k Restoration", engine.FormatDCP},
		{"35", engine.Format35mm},
		{"35 mm", engine.Format35mm},
		{" 35MM ", engine.Format35mm},
		{"70mm", engine.Format70mm},
		{"70", engine.Format70mm},
		{"16MM", engine.Format16mm},
		{" VHS ", engine.Format("VHS")},
		{"Super 8", engine.Format("Super 8")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.NormaliseFormat(tt.raw))
		})
	}
}

func TestFormat_IsFilm(t *testing.T) {
	assert.True(t, engine.Format35mm.IsFilm())
	assert.True(t, engine.Format70mm.IsFilm())
	assert.True(t, engine.Format16mm.IsFilm())
	assert.False(t, engine.FormatDCP.IsFilm())
	assert.False(t, engine.Format("VHS").IsFilm())
}

func TestNormaliseTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"Empty", "", ""},
		{"Blank", "   ", ""},
		{"24h", "14:30", "14:30"},
		{"24h padded input", " 09:05 ", "09:05"},
		{"Single digit hour", "9:30", "09:30"},
		{"PM with minutes", "2:00 PM", "14:00"},
		{"PM without minutes", "2 PM", "14:00"},
		{"Lower case no space", "7:05pm", "19:05"},
		{"Dotted meridiem", "9:30 a.m.", "09:30"},
		{"Noon", "12:00 PM", "12:00"},
		{"Midnight", "12:15 AM", "00:15"},
		{"Serial evening", "0.75", "18:00"},
		{"Serial noon", "0.5", "12:00"},
		{"Serial rounding", "0.7499999", "18:00"},
		{"Serial past midnight", "1.25", "30:00"},
		{"Serial upper bound is text", "2", "2"},
		{"Zero is text", "0", "0"},
		{"Word", "TBC", "TBC"},
		{"Trimmed passthrough", "  late show ", "late show"},
		{"Invalid meridiem hour", "13:00 PM", "13:00 PM"},
		{"Invalid meridiem minutes", "2:75 PM", "2:75 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.NormaliseTime(tt.raw))
		})
	}
}

// TestNormaliseTime_Idempotent checks f(f(x)) == f(x) over a mixed corpus.
func TestNormaliseTime_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", "14:30", "9:30", "2 PM", "2:00 pm", "12:00 AM", "12 p.m.",
		"0.75", "1.5", "1.9999", "0", "2", "-0.5", "TBC", "13:00 PM", "25:00",
		"7:75", "noon", "0.5 PM", "14.30", "1e-1", "NaN", "Inf",
	}

	for _, in := range inputs {
		once := engine.NormaliseTime(in)
		assert.Equal(t, once, engine.NormaliseTime(once), "input %q", in)
	}
}

func TestSplitTimes(t *testing.T) {
	assert.Nil(t, engine.SplitTimes(""))
	assert.Nil(t, engine.SplitTimes("  "))
	assert.Equal(t, []string{"14:00", "18:30"}, engine.SplitTimes("14:00, 18:30, 2:00 PM"))
	assert.Equal(t, []string{"14:00"}, engine.SplitTimes("2:00 PM,, ,"))
	assert.Equal(t, []string{"18:00"}, engine.SplitTimes("0.75"))
}

func TestExtractTitleLink(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantText string
		wantLink string
	}{
		{"Anchor", `<a href="https://example.com/a">Film A</a>`, "Film A", "https://example.com/a"},
		{"Anchor with attributes", `<a target="_blank" href='https://example.com/n' rel="x">  Nosferatu </a>`, "Nosferatu", "https://example.com/n"},
		{"Upper case tag", `<A HREF="https://example.com/m">Metropolis</A>`, "Metropolis", "https://example.com/m"},
		{"Apostrophe in double-quoted href", `<a href="https://example.com/director's-cut">Film A</a>`, "Film A", "https://example.com/director's-cut"},
		{"Double quote in single-quoted href", `<a href='https://example.com/"raw"'>Film B</a>`, "Film B", `https://example.com/"raw"`},
		{"Plain", "  Plain  Title ", "Plain Title", ""},
		{"Empty", "", "", ""},
		{"Broken anchor", `<a href="https://example.com">Unclosed`, `<a href="https://example.com">Unclosed`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, link := engine.ExtractTitleLink(tt.raw)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantLink, link)
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "A B C", engine.CleanText("A\u00a0B\u2003 C\t\n"))
	assert.Equal(t, "ideographic space", engine.CleanText("\u3000ideographic\u202fspace\u3000"))
	assert.Equal(t, "", engine.CleanText(" \u00a0 "))
}

func TestDecorateRuntime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"120", "120 min"},
		{" 95 ", "95 min"},
		{"95 mins", "95 mins"},
		{"88min", "88min"},
		{"0", ""},
		{"0 min", ""},
		{"—", "—"},
		{"TBC", "TBC"},
		{"??", "??"},
		{"", ""},
		{" ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DecorateRuntime(tt.raw))
		})
	}
}

func TestBuildDetails(t *testing.T) {
	assert.Equal(t, "Jane Doe, 1999, 120 min, DCP", engine.BuildDetails("Jane Doe", "1999", "120", engine.FormatDCP))
	assert.Equal(t, "35mm", engine.BuildDetails("", " ", "0", engine.Format35mm))
	assert.Equal(t, "Agnès Varda, 1962", engine.BuildDetails("Agnès Varda", "1962", "", ""))
}

func TestParseProgramme(t *testing.T) {
	got := engine.ParseProgramme("Short A|Dir A|2001|12|16mm||  ||Short B|| |Dir only")

	assert.Equal(t, []engine.ProgrammeEntry{
		{Title: "Short A", Director: "Dir A", Year: "2001", Runtime: "12", Format: engine.Format16mm},
		{Title: "Short B"},
	}, got)

	assert.Nil(t, engine.ParseProgramme(""))
	assert.Nil(t, engine.ParseProgramme("   "))
}

func TestMatchesTag(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		tag   string
		want  bool
	}{
		{"Substring with nbsp", "London\u00a0Film   Festival 2025", "film festival", true},
		{"Case insensitive", "LFF", "lff", true},
		{"Mismatch", "Retrospective", "festival", false},
		{"Empty tag matches", "anything", "", true},
		{"Empty notes", "", "lff", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.MatchesTag(tt.notes, tt.tag))
		})
	}
}
