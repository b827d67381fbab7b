//go:build integration

package index

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"vigil/internal/screening/models"
)

type PostgresIndexSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	index     *Postgres
}

func TestPostgresIndexSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresIndexSuite))
}

func (s *PostgresIndexSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("vigil"),
		tcpostgres.WithUsername("vigil"),
		tcpostgres.WithPassword("vigil"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(db.Ping())
	s.db = db

	_, err = db.ExecContext(ctx, Schema)
	s.Require().NoError(err)

	s.index = NewPostgres(db)
}

func (s *PostgresIndexSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresIndexSuite) SetupTest() {
	_, err := s.db.Exec("TRUNCATE entities, sanction_lists CASCADE")
	s.Require().NoError(err)
}

func (s *PostgresIndexSuite) seed() {
	ctx := context.Background()
	s.Require().NoError(s.index.UpsertSanction(ctx, models.Sanction{ID: "l1", Name: "OFAC SDN"}))
	s.Require().NoError(s.index.Upsert(ctx, DomainSanctioned, models.Entity{
		ID: "s1", ListID: "l1", DefaultName: "Omar Hassan", Type: models.TypeIndividual,
		DatesOfBirth:  []models.PartialDate{{Year: "1980", Month: "05"}},
		Nationalities: []models.Country{{Name: "Syria", IsoCode: "SY"}},
	}))
	s.Require().NoError(s.index.Upsert(ctx, DomainSanctioned, models.Entity{
		ID: "s2", ListID: "l1", DefaultName: "Sea Harvest", Type: models.TypeVessel,
		Alias: []string{"Omar Star"},
	}))
	s.Require().NoError(s.index.Upsert(ctx, DomainExposed, models.Entity{
		ID: "p1", DefaultName: "Omar Hassan", Type: models.TypeIndividual,
		Positions: []string{"Minister of Finance"},
	}))
}

func (s *PostgresIndexSuite) TestSearchReturnsNormalizedScores() {
	s.seed()
	hits, err := s.index.Search(context.Background(), NewQuery(DomainSanctioned, "Omar Hassan"))
	s.Require().NoError(err)
	s.Require().NotEmpty(hits)
	s.Equal("s1", hits[0].Entity.ID)
	s.InDelta(1.0, hits[0].IndexScore, 1e-9)
	for _, h := range hits {
		s.GreaterOrEqual(h.IndexScore, DefaultScoreFloor)
		s.LessOrEqual(h.IndexScore, 1.0)
	}
}

func (s *PostgresIndexSuite) TestSearchDomainsIsolated() {
	s.seed()
	hits, err := s.index.Search(context.Background(), NewQuery(DomainExposed, "Omar Hassan"))
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal("p1", hits[0].Entity.ID)
	s.Equal([]string{"Minister of Finance"}, hits[0].Entity.Positions)
}

func (s *PostgresIndexSuite) TestSearchTypePattern() {
	s.seed()
	hits, err := s.index.Search(context.Background(),
		NewQuery(DomainSanctioned, "Omar").WithTypePattern("vessel").WithScoreFloor(0))
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal("s2", hits[0].Entity.ID)
}

func (s *PostgresIndexSuite) TestSearchSanctionJoin() {
	s.seed()
	hits, err := s.index.Search(context.Background(),
		NewQuery(DomainSanctioned, "Omar Hassan").WithSanctionLookup())
	s.Require().NoError(err)
	s.Require().NotEmpty(hits)
	s.Require().NotNil(hits[0].Sanction)
	s.Equal("OFAC SDN", hits[0].Sanction.Name)
}

func (s *PostgresIndexSuite) TestSearchBiographicalRoundTrip() {
	s.seed()
	hits, err := s.index.Search(context.Background(), NewQuery(DomainSanctioned, "Omar Hassan"))
	s.Require().NoError(err)
	s.Require().NotEmpty(hits)
	e := hits[0].Entity
	s.Equal([]models.PartialDate{{Year: "1980", Month: "05"}}, e.DatesOfBirth)
	s.Equal([]models.Country{{Name: "Syria", IsoCode: "SY"}}, e.Nationalities)
}

func (s *PostgresIndexSuite) TestSearchNoMatch() {
	s.seed()
	hits, err := s.index.Search(context.Background(), NewQuery(DomainSanctioned, "zzzzzz"))
	s.Require().NoError(err)
	s.Empty(hits)
}
