// Package service orchestrates a search call: validate the request, build the
// index query, normalize and filter the hits, and trigger the export when
// anything matched. One index query and at most one export per call; failures
// propagate to the caller without retries.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"vigil/internal/audit"
	"vigil/internal/platform/config"
	"vigil/internal/platform/metrics"
	"vigil/internal/platform/middleware"
	"vigil/internal/platform/redis"
	"vigil/internal/screening/filter"
	"vigil/internal/screening/index"
	"vigil/internal/screening/models"
	"vigil/internal/screening/normalize"
	"vigil/internal/screening/report"
	dErrors "vigil/pkg/domainerrors"
)

// Exporter writes an ordered row list to a downloadable file.
type Exporter interface {
	Write(ctx context.Context, rows []models.ExportRow, filename string) error
}

// Service is the query orchestrator for both watchlist domains.
type Service struct {
	logger      *slog.Logger
	index       index.Index
	exporter    Exporter
	cache       *redis.Client
	metrics     *metrics.Metrics
	audit       *audit.Publisher
	downloadURL string
	detailURL   string
}

// Option configures optional dependencies.
type Option func(*Service)

// WithCache enables the redis response cache.
func WithCache(cache *redis.Client) Option {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit sets the audit publisher.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// New builds a Service.
func New(logger *slog.Logger, idx index.Index, exporter Exporter, downloadURL, detailURL string, opts ...Option) *Service {
	s := &Service{
		logger:      logger,
		index:       idx,
		exporter:    exporter,
		downloadURL: downloadURL,
		detailURL:   detailURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var fourDigitRun = regexp.MustCompile(`[0-9]{4}`)
var dobFormat = regexp.MustCompile(`^[0-9]{4}(-[0-9]{2})?$`)

// Tolerance/floor derivation thresholds. Tightening is always allowed;
// loosening the floor below the default only for clearly low-confidence
// requests. The 40-80 gap is intentional, observed behavior.
const (
	strictToleranceAbove = 80.0
	looseFloorBelow      = 40.0
)

// SearchSimple runs a free-text search with default fuzzy tolerance and score
// floor, exports when anything matched, and returns the result envelope.
func (s *Service) SearchSimple(ctx context.Context, domain index.Domain, text string) (*models.SearchResponse, error) {
	if err := validateFullName(text); err != nil {
		return nil, err
	}

	if resp := s.cacheGet(ctx, domain, "simple", text); resp != nil {
		return resp, nil
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "search",
		"request_id", middleware.GetRequestID(ctx),
		"domain", domain, "kind", "simple",
	)

	q := index.NewQuery(domain, text)
	if domain == index.DomainSanctioned {
		q = q.WithSanctionLookup()
	}

	hits, err := s.index.Search(ctx, q)
	if err != nil {
		s.observe(ctx, domain, "simple", "error", text, false, 0, start)
		return nil, fmt.Errorf("index query: %w", err)
	}

	results := normalize.Results(hits, text)
	return s.respond(ctx, domain, "simple", text, text, false, results, start)
}

// SearchFiltered runs a filtered search. The fuzzy tolerance and index-native
// score floor derive from the requested match rate; biographical filters
// apply after normalization.
func (s *Service) SearchFiltered(ctx context.Context, domain index.Domain, body models.SearchParam) (*models.SearchResponse, error) {
	if err := validateParam(domain, body); err != nil {
		return nil, err
	}

	token := cacheKeyParam(body)
	if resp := s.cacheGet(ctx, domain, "filtered", token); resp != nil {
		return resp, nil
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "search",
		"request_id", middleware.GetRequestID(ctx),
		"domain", domain, "kind", "filtered",
	)

	tolerance := index.DefaultTolerance
	floor := index.DefaultScoreFloor
	if body.MatchRate > 0 {
		if body.MatchRate > strictToleranceAbove {
			tolerance = 1
		}
		if body.MatchRate < looseFloorBelow {
			floor = body.MatchRate / 100
		}
	}

	q := index.NewQuery(domain, body.FullName).
		WithTolerance(tolerance).
		WithScoreFloor(floor)
	if body.Type != "" {
		q = q.WithTypePattern(body.Type)
	}
	if domain == index.DomainSanctioned {
		q = q.WithSanctionLookup()
	}

	hits, err := s.index.Search(ctx, q)
	if err != nil {
		s.observe(ctx, domain, "filtered", "error", body.FullName, true, 0, start)
		return nil, fmt.Errorf("index query: %w", err)
	}

	results := filter.Apply(normalize.Results(hits, body.FullName), body)
	return s.respond(ctx, domain, "filtered", body.FullName, token, true, results, start)
}

// respond finishes a search: an empty result set is a successful response
// with no export; otherwise the report is written before the envelope is
// returned so the download link is live immediately.
func (s *Service) respond(ctx context.Context, domain index.Domain, kind, query, token string, filtered bool, results []models.RankedResult, start time.Time) (*models.SearchResponse, error) {
	if results == nil {
		results = []models.RankedResult{}
	}
	resp := &models.SearchResponse{
		ResultsCount: len(results),
		Results:      results,
	}

	if len(results) > 0 {
		rows := report.MapRows(results, query, s.detailURL)
		filename := report.Filename(query)
		if err := s.exporter.Write(ctx, rows, filename); err != nil {
			s.observe(ctx, domain, kind, "error", query, filtered, len(results), start)
			return nil, fmt.Errorf("generate export: %w", err)
		}
		s.metrics.IncExports()
		url := s.downloadURL + filename
		resp.ResultsFile = &url
	}

	s.observe(ctx, domain, kind, "ok", query, filtered, len(results), start)
	s.cacheSet(ctx, domain, kind, token, resp)
	return resp, nil
}

func (s *Service) observe(ctx context.Context, domain index.Domain, kind, outcome, query string, filtered bool, count int, start time.Time) {
	elapsed := time.Since(start)
	s.metrics.ObserveSearch(string(domain), kind, outcome, elapsed)
	s.logger.InfoContext(ctx, "search done",
		"request_id", middleware.GetRequestID(ctx),
		"domain", domain, "kind", kind, "outcome", outcome,
		"results", count, "duration_ms", elapsed.Milliseconds(),
	)
	if outcome == "ok" {
		s.audit.Emit(audit.Event{
			RequestID:    middleware.GetRequestID(ctx),
			Domain:       string(domain),
			Query:        query,
			Filtered:     filtered,
			ResultsCount: count,
		})
	}
}

func validateFullName(text string) error {
	if len(strings.TrimSpace(text)) <= 3 || fourDigitRun.MatchString(text) {
		return dErrors.New(dErrors.CodeBadRequest, "you must provide a real full name to search")
	}
	return nil
}

func validateParam(domain index.Domain, body models.SearchParam) error {
	if err := validateFullName(body.FullName); err != nil {
		return err
	}
	if body.DOB != "" && !dobFormat.MatchString(body.DOB) {
		return dErrors.New(dErrors.CodeBadRequest, "dob must be YYYY-MM or YYYY")
	}
	if body.MatchRate != 0 && (body.MatchRate < 1 || body.MatchRate > 100) {
		return dErrors.New(dErrors.CodeBadRequest, "matchRate must be a number between 1 and 100")
	}
	if body.Sanction != nil && len(body.Sanction) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "sanction must be a non-empty list of sanction ids")
	}
	if body.Type != "" {
		if err := validateType(domain, body.Type); err != nil {
			return err
		}
	}
	return nil
}

// validateType checks the domain-specific type enum. Vessels only exist on
// sanctioned lists.
func validateType(domain index.Domain, typ string) error {
	switch strings.ToLower(typ) {
	case "individual", "entity":
		return nil
	case "vessel":
		if domain == index.DomainSanctioned {
			return nil
		}
	}
	if domain == index.DomainSanctioned {
		return dErrors.New(dErrors.CodeBadRequest, "type value must be Individual, Entity or Vessel")
	}
	return dErrors.New(dErrors.CodeBadRequest, "type value must be Individual or Entity")
}

func cacheKeyParam(body models.SearchParam) string {
	raw, err := json.Marshal(body)
	if err != nil {
		return body.FullName
	}
	return string(raw)
}

func (s *Service) cacheKey(domain index.Domain, kind, token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("search:%s:%s:%x", domain, kind, sum[:8])
}

// cacheGet returns a cached envelope or nil. Cache trouble never fails a
// search; it logs and falls through to the index.
func (s *Service) cacheGet(ctx context.Context, domain index.Domain, kind, token string) *models.SearchResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cacheKey(domain, kind, token)).Bytes()
	if err != nil {
		s.metrics.IncCacheMiss()
		return nil
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.metrics.IncCacheMiss()
		return nil
	}
	s.metrics.IncCacheHit()
	return &resp
}

func (s *Service) cacheSet(ctx context.Context, domain index.Domain, kind, token string, resp *models.SearchResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(domain, kind, token), raw, config.SearchCacheTTL).Err(); err != nil {
		s.logger.DebugContext(ctx, "cache set failed", "error", err)
	}
}
