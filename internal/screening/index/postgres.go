package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"vigil/internal/screening/models"
)

// Postgres implements Index on top of pg_trgm word similarity. The statement
// mirrors the pipeline shape of the query contract: score the name fields,
// keep candidates above the fuzzy threshold, normalize against the per-query
// maximum, apply the floor and optional constraints.
//
// Requires the pg_trgm extension and the schema in Schema.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema creates the tables and extension the index needs. Exposed for tests
// and bootstrap tooling; production migrations own the real schema.
const Schema = `
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS sanction_lists (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entities (
	id              TEXT PRIMARY KEY,
	domain          TEXT NOT NULL,
	list_id         TEXT REFERENCES sanction_lists (id),
	default_name    TEXT NOT NULL,
	alias           TEXT[] NOT NULL DEFAULT '{}',
	type            TEXT NOT NULL DEFAULT '',
	positions       TEXT[] NOT NULL DEFAULT '{}',
	remarks         TEXT NOT NULL DEFAULT '',
	publication_url TEXT NOT NULL DEFAULT '',
	dates_of_birth  JSONB,
	places_of_birth JSONB,
	nationalities   JSONB,
	citizenships    JSONB
);

CREATE INDEX IF NOT EXISTS entities_domain_idx ON entities (domain);
CREATE INDEX IF NOT EXISTS entities_name_trgm_idx ON entities USING gin (default_name gin_trgm_ops);
`

// Trigram thresholds standing in for edit-distance tolerance. Tolerance 2 is
// the permissive default; tolerance 1 demands a visibly closer match.
const (
	trgmThresholdLoose  = 0.30
	trgmThresholdStrict = 0.45
)

func similarityThreshold(tolerance int) float64 {
	if tolerance <= 1 {
		return trgmThresholdStrict
	}
	return trgmThresholdLoose
}

// buildStatement assembles the SQL pipeline for a query. Each stage is its
// own CTE so the statement reads in the same order the contract is defined.
func buildStatement(q Query) (string, []any) {
	args := []any{q.Text, string(q.Domain), similarityThreshold(q.Tolerance), q.ScoreFloor}

	var sb strings.Builder
	sb.WriteString(`
WITH scored AS (
	SELECT e.*, GREATEST(
		word_similarity($1, e.default_name),
		COALESCE((SELECT MAX(word_similarity($1, a)) FROM unnest(e.alias) AS a), 0)
	) AS search_score
	FROM entities e
	WHERE e.domain = $2
), matched AS (
	SELECT * FROM scored WHERE search_score >= $3
), normalized AS (
	SELECT *, search_score / NULLIF(MAX(search_score) OVER (), 0) AS normalized_score
	FROM matched
)
SELECT n.id, n.list_id, n.default_name, n.alias, n.type, n.positions,
	n.remarks, n.publication_url,
	n.dates_of_birth, n.places_of_birth, n.nationalities, n.citizenships,
	n.normalized_score`)

	if q.IncludeSanction {
		sb.WriteString(", s.id, s.name")
	} else {
		sb.WriteString(", NULL, NULL")
	}

	sb.WriteString(`
FROM normalized n`)
	if q.IncludeSanction {
		sb.WriteString(`
LEFT JOIN sanction_lists s ON s.id = n.list_id`)
	}
	sb.WriteString(`
WHERE n.normalized_score >= $4`)

	if q.TypePattern != "" {
		args = append(args, "%"+q.TypePattern+"%")
		sb.WriteString(fmt.Sprintf(`
AND n.type ILIKE $%d`, len(args)))
	}

	sb.WriteString(`
ORDER BY n.normalized_score DESC, n.id`)

	return sb.String(), args
}

// Search executes the query and maps rows into hits.
func (p *Postgres) Search(ctx context.Context, q Query) ([]models.SearchHit, error) {
	stmt, args := buildStatement(q)
	rows, err := p.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}
	defer rows.Close()

	var hits []models.SearchHit
	for rows.Next() {
		var (
			e            models.Entity
			listID       sql.NullString
			dob, pob     []byte
			nat, cit     []byte
			score        float64
			sanctionID   sql.NullString
			sanctionName sql.NullString
		)
		err := rows.Scan(
			&e.ID, &listID, &e.DefaultName, pq.Array(&e.Alias), &e.Type, pq.Array(&e.Positions),
			&e.Remarks, &e.PublicationURL,
			&dob, &pob, &nat, &cit,
			&score, &sanctionID, &sanctionName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		e.ListID = listID.String
		if err := unmarshalInto(dob, &e.DatesOfBirth); err != nil {
			return nil, err
		}
		if err := unmarshalInto(pob, &e.PlacesOfBirth); err != nil {
			return nil, err
		}
		if err := unmarshalInto(nat, &e.Nationalities); err != nil {
			return nil, err
		}
		if err := unmarshalInto(cit, &e.Citizenships); err != nil {
			return nil, err
		}

		hit := models.SearchHit{Entity: e, IndexScore: score}
		if sanctionID.Valid {
			hit.Sanction = &models.Sanction{ID: sanctionID.String, Name: sanctionName.String}
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}

// Upsert writes an entity row; the import pipeline and tests load data
// through this.
func (p *Postgres) Upsert(ctx context.Context, domain Domain, e models.Entity) error {
	dob, err := marshalOrNil(e.DatesOfBirth)
	if err != nil {
		return err
	}
	pob, err := marshalOrNil(e.PlacesOfBirth)
	if err != nil {
		return err
	}
	nat, err := marshalOrNil(e.Nationalities)
	if err != nil {
		return err
	}
	cit, err := marshalOrNil(e.Citizenships)
	if err != nil {
		return err
	}

	var listID any
	if e.ListID != "" {
		listID = e.ListID
	}

	_, err = p.db.ExecContext(ctx, `
INSERT INTO entities (id, domain, list_id, default_name, alias, type, positions,
	remarks, publication_url, dates_of_birth, places_of_birth, nationalities, citizenships)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	domain = EXCLUDED.domain,
	list_id = EXCLUDED.list_id,
	default_name = EXCLUDED.default_name,
	alias = EXCLUDED.alias,
	type = EXCLUDED.type,
	positions = EXCLUDED.positions,
	remarks = EXCLUDED.remarks,
	publication_url = EXCLUDED.publication_url,
	dates_of_birth = EXCLUDED.dates_of_birth,
	places_of_birth = EXCLUDED.places_of_birth,
	nationalities = EXCLUDED.nationalities,
	citizenships = EXCLUDED.citizenships`,
		e.ID, string(domain), listID, e.DefaultName, pq.Array(e.Alias), e.Type, pq.Array(e.Positions),
		e.Remarks, e.PublicationURL, dob, pob, nat, cit,
	)
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}

// UpsertSanction writes a sanction list row.
func (p *Postgres) UpsertSanction(ctx context.Context, s models.Sanction) error {
	_, err := p.db.ExecContext(ctx, `
INSERT INTO sanction_lists (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, s.ID, s.Name)
	if err != nil {
		return fmt.Errorf("upsert sanction list: %w", err)
	}
	return nil
}

func unmarshalInto[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode entity field: %w", err)
	}
	return nil
}

func marshalOrNil[T any](v []T) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity field: %w", err)
	}
	return b, nil
}
