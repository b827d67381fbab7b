package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/screening/models"
)

const detailURL = "https://screen.example.com/entities/"

func TestFilenameStripsWhitespace(t *testing.T) {
	assert.Equal(t, "OmarHassan.xlsx", Filename("Omar Hassan"))
	assert.Equal(t, "OmarHassan.xlsx", Filename("  Omar\tHassan "))
}

func TestMapRowsNoMatch(t *testing.T) {
	rows := MapRows(nil, "Omar Hassan", detailURL)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StyleNoMatch, rows[0].Style)
	assert.Equal(t, "Omar Hassan", rows[0].SearchInput)
	assert.Equal(t, "No match detected", rows[0].Result)
	assert.Equal(t, "0.00 %", rows[0].MatchRate)
}

func TestMapRowsSummaryThenMatches(t *testing.T) {
	results := []models.RankedResult{
		{Entity: models.Entity{ID: "e1", DefaultName: "Omar Hassan", Positions: []string{"Minister", "Deputy"}}, Score: 95.5},
		{Entity: models.Entity{ID: "e2", DefaultName: "Omma Hasan"}, Score: 61.0},
	}
	rows := MapRows(results, "Omar Hassan", detailURL)
	require.Len(t, rows, 3)

	summary := rows[0]
	assert.Equal(t, models.StyleSummary, summary.Style)
	assert.Equal(t, "Potential match detected", summary.Result)
	assert.Equal(t, "95.50 %", summary.MatchRate)

	first := rows[1]
	assert.Equal(t, models.StyleMatch, first.Style)
	assert.Equal(t, "0. (95.50%) - Omar Hassan", first.Result)
	assert.Equal(t, "Minister,Deputy", first.Positions)
	assert.Equal(t, detailURL+"e1/information", first.Link)

	second := rows[2]
	assert.Equal(t, "1. (61.00%) - Omma Hasan", second.Result)
}

func TestMapRowsDOBFormatting(t *testing.T) {
	full := []models.RankedResult{{Entity: models.Entity{
		DatesOfBirth: []models.PartialDate{{Year: "1980", Month: "05", Day: "12"}},
	}, Score: 50}}
	rows := MapRows(full, "q", detailURL)
	assert.Equal(t, "12/05/1980", rows[1].DOB)

	yearOnly := []models.RankedResult{{Entity: models.Entity{
		DatesOfBirth: []models.PartialDate{{Year: "1980"}},
	}, Score: 50}}
	rows = MapRows(yearOnly, "q", detailURL)
	assert.Equal(t, "1980", rows[1].DOB)

	none := []models.RankedResult{{Entity: models.Entity{}, Score: 50}}
	rows = MapRows(none, "q", detailURL)
	assert.Empty(t, rows[1].DOB)
}

func TestMapRowsNationalityFallbacks(t *testing.T) {
	named := []models.RankedResult{{Entity: models.Entity{
		Nationalities: []models.Country{{Name: "Syria", IsoCode: "SY"}},
	}, Score: 50}}
	assert.Equal(t, "Syria", MapRows(named, "q", detailURL)[1].Nationality)

	codeOnly := []models.RankedResult{{Entity: models.Entity{
		Citizenships: []models.Country{{IsoCode: "FR"}},
	}, Score: 50}}
	assert.NotEmpty(t, MapRows(codeOnly, "q", detailURL)[1].Nationality)

	viaPlace := []models.RankedResult{{Entity: models.Entity{
		PlacesOfBirth: []models.PlaceOfBirth{{Country: &models.Country{Name: "Chad"}}},
	}, Score: 50}}
	assert.Equal(t, "Chad", MapRows(viaPlace, "q", detailURL)[1].Nationality)

	blank := []models.RankedResult{{Entity: models.Entity{}, Score: 50}}
	assert.Empty(t, MapRows(blank, "q", detailURL)[1].Nationality)
}
