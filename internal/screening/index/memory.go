package index

import (
	"context"
	"strings"
	"sync"

	"vigil/internal/screening/models"
)

// Memory is an in-memory index with true bounded edit-distance matching. It
// backs unit tests and local development; the postgres index approximates the
// same contract with trigram similarity.
type Memory struct {
	mu        sync.RWMutex
	entities  map[Domain][]models.Entity
	sanctions map[string]models.Sanction
}

// NewMemory returns an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{
		entities:  make(map[Domain][]models.Entity),
		sanctions: make(map[string]models.Sanction),
	}
}

// Add indexes an entity under a domain.
func (m *Memory) Add(domain Domain, e models.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[domain] = append(m.entities[domain], e)
}

// AddSanction registers a sanction list for lookup joins.
func (m *Memory) AddSanction(s models.Sanction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sanctions[s.ID] = s
}

// Search runs the query: fuzzy token match over names within the tolerance,
// raw scores normalized against the best hit, floor applied, optional type
// constraint, optional sanction join. Hits keep insertion order within equal
// scores so results are deterministic.
func (m *Memory) Search(ctx context.Context, q Query) ([]models.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	queryTokens := tokenize(q.Text)

	type scored struct {
		entity models.Entity
		raw    float64
	}
	var matched []scored
	maxRaw := 0.0

	for _, e := range m.entities[q.Domain] {
		if q.TypePattern != "" && !strings.Contains(strings.ToLower(e.Type), strings.ToLower(q.TypePattern)) {
			continue
		}
		raw := 0.0
		for _, name := range e.Names() {
			if s := fuzzyTokenScore(tokenize(name), queryTokens, q.Tolerance); s > raw {
				raw = s
			}
		}
		if raw <= 0 {
			continue
		}
		matched = append(matched, scored{entity: e, raw: raw})
		if raw > maxRaw {
			maxRaw = raw
		}
	}

	var hits []models.SearchHit
	for _, s := range matched {
		normalized := s.raw / maxRaw
		if normalized < q.ScoreFloor {
			continue
		}
		hit := models.SearchHit{Entity: s.entity, IndexScore: normalized}
		if q.IncludeSanction && s.entity.ListID != "" {
			if sanction, ok := m.sanctions[s.entity.ListID]; ok {
				hit.Sanction = &sanction
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// fuzzyTokenScore returns the best per-token match quality between a name and
// the query, or 0 when no token pair is within the edit tolerance. Quality is
// 1 for an exact token and decays with edit distance relative to token length.
func fuzzyTokenScore(nameTokens, queryTokens []string, tolerance int) float64 {
	best := 0.0
	for _, qt := range queryTokens {
		for _, nt := range nameTokens {
			d := levenshtein(qt, nt)
			if d > tolerance {
				continue
			}
			longest := len([]rune(qt))
			if l := len([]rune(nt)); l > longest {
				longest = l
			}
			score := 1.0
			if longest > 0 {
				score = 1 - float64(d)/float64(longest)
			}
			if score > best {
				best = score
			}
		}
	}
	return best
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
