// Package filter applies the optional post-search predicates to a ranked
// result list. Stages run in a fixed order and compose by intersection;
// multiple accepted values inside one stage compose as OR. Every predicate
// treats missing biographical data as a non-match: with heterogeneous sources,
// absent fields are routine and must never pass an active filter or panic.
package filter

import (
	"strconv"
	"strings"

	"vigil/internal/screening/models"
)

// Apply runs the active stages (match rate, date of birth, nationality) over
// results. Each stage allocates a fresh slice; the input is never mutated.
func Apply(results []models.RankedResult, params models.SearchParam) []models.RankedResult {
	filtered := results

	if params.MatchRate > 0 {
		filtered = keep(filtered, func(r models.RankedResult) bool {
			return r.Score >= params.MatchRate
		})
	}

	if params.DOB != "" {
		filtered = keep(filtered, func(r models.RankedResult) bool {
			return matchesDOB(r.Entity.DatesOfBirth, params.DOB)
		})
	}

	if len(params.Nationality) > 0 {
		filtered = keep(filtered, func(r models.RankedResult) bool {
			return matchesAnyCountry(r.Entity, params.Nationality)
		})
	}

	return filtered
}

func keep(results []models.RankedResult, pred func(models.RankedResult) bool) []models.RankedResult {
	out := make([]models.RankedResult, 0, len(results))
	for _, r := range results {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// matchesDOB checks the YYYY or YYYY-MM filter against every known date of
// birth. An entity with no dates fails; a malformed filter value matches
// nothing rather than erroring, since validation belongs upstream.
func matchesDOB(dates []models.PartialDate, dob string) bool {
	dob = strings.TrimSpace(dob)
	year, month, ok := splitDOB(dob)
	if !ok {
		return false
	}
	for _, d := range dates {
		if !sameDatePart(d.Year, year) {
			continue
		}
		if month == "" || sameDatePart(d.Month, month) {
			return true
		}
	}
	return false
}

func splitDOB(dob string) (year, month string, ok bool) {
	switch len(dob) {
	case 4:
		return dob, "", true
	case 7:
		parts := strings.SplitN(dob, "-", 2)
		if len(parts) != 2 {
			return "", "", false
		}
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}

// sameDatePart compares numerically when both sides parse ("05" matches "5"),
// falling back to exact string comparison for non-numeric source data.
func sameDatePart(have, want string) bool {
	if have == "" {
		return false
	}
	h, errH := strconv.Atoi(have)
	w, errW := strconv.Atoi(want)
	if errH == nil && errW == nil {
		return h == w
	}
	return have == want
}

// matchesAnyCountry checks the supplied ISO codes against nationalities,
// citizenships and places of birth. Any single code hitting any of the three
// collections passes.
func matchesAnyCountry(e models.Entity, codes []string) bool {
	for _, code := range codes {
		if matchesCountry(e.Nationalities, code) ||
			matchesCountry(e.Citizenships, code) ||
			matchesPlaceOfBirth(e.PlacesOfBirth, code) {
			return true
		}
	}
	return false
}

func matchesCountry(entries []models.Country, code string) bool {
	for _, c := range entries {
		if c.IsoCode != "" && strings.EqualFold(c.IsoCode, code) {
			return true
		}
	}
	return false
}

func matchesPlaceOfBirth(places []models.PlaceOfBirth, code string) bool {
	for _, p := range places {
		if p.Country != nil && p.Country.IsoCode != "" && strings.EqualFold(p.Country.IsoCode, code) {
			return true
		}
	}
	return false
}
