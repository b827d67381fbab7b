// Package report flattens filtered results into export rows. Rows carry a
// style tag for the external renderer; no presentation logic lives here.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"vigil/internal/countries"
	"vigil/internal/screening/models"
)

// Filename derives the export file name from the query: whitespace stripped,
// fixed extension. Regenerating a search overwrites the prior file.
func Filename(query string) string {
	return strings.Join(strings.Fields(query), "") + ".xlsx"
}

// MapRows builds the export row list. An empty result set yields a single
// no-match summary row; otherwise a summary row echoing the top score is
// followed by one row per result.
func MapRows(results []models.RankedResult, query string, detailURL string) []models.ExportRow {
	if len(results) == 0 {
		return []models.ExportRow{{
			Style:       models.StyleNoMatch,
			SearchInput: query,
			Result:      "No match detected",
			MatchRate:   "0.00 %",
		}}
	}

	rows := make([]models.ExportRow, 0, len(results)+1)
	rows = append(rows, models.ExportRow{
		Style:       models.StyleSummary,
		SearchInput: query,
		Result:      "Potential match detected",
		MatchRate:   formatScore(results[0].Score) + " %",
	})

	for i, r := range results {
		rows = append(rows, models.ExportRow{
			Style:       models.StyleMatch,
			Result:      fmt.Sprintf("%d. (%s%%) - %s", i, formatScore(r.Score), r.Entity.DefaultName),
			Positions:   strings.Join(r.Entity.Positions, ","),
			DOB:         formatDOB(r.Entity.DatesOfBirth),
			Nationality: bestNationality(r.Entity),
			Link:        detailURL + r.Entity.ID + "/information",
		})
	}
	return rows
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// formatDOB renders the first known date of birth as day/month/year with
// whatever fields are present.
func formatDOB(dates []models.PartialDate) string {
	if len(dates) == 0 {
		return ""
	}
	d := dates[0]
	var sb strings.Builder
	if d.Day != "" {
		sb.WriteString(d.Day)
		sb.WriteString("/")
	}
	if d.Month != "" {
		sb.WriteString(d.Month)
		sb.WriteString("/")
	}
	sb.WriteString(d.Year)
	return sb.String()
}

// bestNationality picks the first available country for display, resolving a
// bare ISO code to a name through the reference lookup.
func bestNationality(e models.Entity) string {
	candidates := make([]models.Country, 0, len(e.Nationalities)+len(e.Citizenships))
	candidates = append(candidates, e.Nationalities...)
	candidates = append(candidates, e.Citizenships...)
	for _, p := range e.PlacesOfBirth {
		if p.Country != nil {
			candidates = append(candidates, *p.Country)
		}
	}
	for _, c := range candidates {
		if c.Name != "" {
			return c.Name
		}
		if name := countries.NameByAlpha2(c.IsoCode); name != "" {
			return name
		}
	}
	return ""
}
