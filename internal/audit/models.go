// Package audit records who searched what. Compliance screening must retain a
// trail of queries and outcomes; events flow through a channel worker to a
// kafka topic in production or an in-memory sink in tests.
package audit

import "time"

// Event captures one completed search. Keep it transport-agnostic so sinks
// can fan out.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"requestId,omitempty"`
	Domain       string    `json:"domain"`
	Query        string    `json:"query"`
	Filtered     bool      `json:"filtered"`
	ResultsCount int       `json:"resultsCount"`
}
