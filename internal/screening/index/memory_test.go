package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/screening/models"
)

func seedMemory() *Memory {
	m := NewMemory()
	m.Add(DomainExposed, models.Entity{ID: "p1", DefaultName: "Omar Hassan", Type: models.TypeIndividual})
	m.Add(DomainExposed, models.Entity{ID: "p2", DefaultName: "Omma Hasan", Type: models.TypeIndividual})
	m.Add(DomainExposed, models.Entity{ID: "p3", DefaultName: "Acme Holdings", Type: models.TypeEntity, Alias: []string{"Omar Trading"}})
	m.Add(DomainSanctioned, models.Entity{ID: "s1", ListID: "l1", DefaultName: "Omar Hassan", Type: models.TypeIndividual})
	m.AddSanction(models.Sanction{ID: "l1", Name: "OFAC SDN"})
	return m
}

func TestMemorySearchExactToken(t *testing.T) {
	m := seedMemory()
	hits, err := m.Search(context.Background(), NewQuery(DomainExposed, "Omar Hassan"))
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "p1", hits[0].Entity.ID)
	assert.Equal(t, 1.0, hits[0].IndexScore)
}

func TestMemorySearchToleranceBoundsEdits(t *testing.T) {
	m := NewMemory()
	m.Add(DomainExposed, models.Entity{ID: "close", DefaultName: "Hassan"})  // 1 edit from "hasan"
	m.Add(DomainExposed, models.Entity{ID: "far", DefaultName: "Hopkins"})   // far beyond 2 edits

	hits, err := m.Search(context.Background(), NewQuery(DomainExposed, "hasan"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "close", hits[0].Entity.ID)

	// Tolerance 0 requires an exact token.
	hits, err = m.Search(context.Background(), NewQuery(DomainExposed, "hasan").WithTolerance(0))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemorySearchFloorDropsWeakHits(t *testing.T) {
	m := NewMemory()
	m.Add(DomainExposed, models.Entity{ID: "strong", DefaultName: "Hassan"})
	m.Add(DomainExposed, models.Entity{ID: "weak", DefaultName: "Hessane"}) // 2 edits, lower quality

	all, err := m.Search(context.Background(), NewQuery(DomainExposed, "hassan").WithScoreFloor(0))
	require.NoError(t, err)
	require.Len(t, all, 2)

	strict, err := m.Search(context.Background(), NewQuery(DomainExposed, "hassan").WithScoreFloor(0.9))
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, "strong", strict[0].Entity.ID)
}

func TestMemorySearchMatchesAlias(t *testing.T) {
	m := seedMemory()
	hits, err := m.Search(context.Background(), NewQuery(DomainExposed, "Trading"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p3", hits[0].Entity.ID)
}

func TestMemorySearchTypePattern(t *testing.T) {
	m := seedMemory()
	hits, err := m.Search(context.Background(), NewQuery(DomainExposed, "omar").WithTypePattern("entity").WithScoreFloor(0))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, models.TypeEntity, hits[0].Entity.Type)

	// Case-insensitive pattern.
	hits, err = m.Search(context.Background(), NewQuery(DomainExposed, "omar").WithTypePattern("INDIVIDUAL").WithScoreFloor(0))
	require.NoError(t, err)
	for _, h := range hits {
		assert.Equal(t, models.TypeIndividual, h.Entity.Type)
	}
}

func TestMemorySearchSanctionLookup(t *testing.T) {
	m := seedMemory()
	hits, err := m.Search(context.Background(), NewQuery(DomainSanctioned, "Omar Hassan").WithSanctionLookup())
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.NotNil(t, hits[0].Sanction)
	assert.Equal(t, "OFAC SDN", hits[0].Sanction.Name)

	// Without the lookup fragment no sanction is attached.
	hits, err = m.Search(context.Background(), NewQuery(DomainSanctioned, "Omar Hassan"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Nil(t, hits[0].Sanction)
}

func TestMemorySearchDomainsAreIsolated(t *testing.T) {
	m := seedMemory()
	hits, err := m.Search(context.Background(), NewQuery(DomainSanctioned, "Acme"))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemorySearchNoMatch(t *testing.T) {
	m := seedMemory()
	hits, err := m.Search(context.Background(), NewQuery(DomainExposed, "zzzzzzzz"))
	require.NoError(t, err)
	assert.Empty(t, hits)
}
