// Package normalize turns raw index hits into ranked results. No hit is
// dropped here: score-based filtering happens downstream and only when a
// caller asks for it.
package normalize

import (
	"sort"

	"vigil/internal/screening/models"
	"vigil/internal/screening/similarity"
)

// Results recomputes the displayed score for every hit and orders the output
// by descending score. The sort is stable so ties keep the original hit order,
// which keeps pagination and exports reproducible.
func Results(hits []models.SearchHit, query string) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.RankedResult{
			Entity:   hit.Entity,
			Sanction: hit.Sanction,
			Score:    similarity.Score(hit.Entity.Names(), query),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
