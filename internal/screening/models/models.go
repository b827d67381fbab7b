// Package models defines the normalized watchlist entity shape and the
// transient types flowing through the search pipeline. Entities are created by
// the import pipeline and are read-only here; everything else lives for one
// request.
package models

// Entity types as stored. Vessel only appears on sanctioned lists.
const (
	TypeIndividual = "Individual"
	TypeEntity     = "Entity"
	TypeVessel     = "Vessel"
)

// PartialDate is a date of birth with any subset of fields present. Multiple
// entries on one entity represent uncertainty across sources.
type PartialDate struct {
	Year  string `json:"year,omitempty"`
	Month string `json:"month,omitempty"`
	Day   string `json:"day,omitempty"`
}

// Country is a name/ISO-3166 alpha-2 pair; either side may be missing.
type Country struct {
	Name    string `json:"name,omitempty"`
	IsoCode string `json:"isoCode,omitempty"`
}

// PlaceOfBirth is a partial place record from heterogeneous sources.
type PlaceOfBirth struct {
	Place           string   `json:"place,omitempty"`
	Country         *Country `json:"country,omitempty"`
	StateOrProvince string   `json:"stateOrProvince,omitempty"`
	PostalCode      string   `json:"postalCode,omitempty"`
}

// Sanction references the issuing sanction list of a sanctioned entity.
type Sanction struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entity is the normalized watchlisted person/organization record.
type Entity struct {
	ID             string         `json:"id"`
	ListID         string         `json:"listId,omitempty"`
	DefaultName    string         `json:"defaultName"`
	Alias          []string       `json:"alias,omitempty"`
	Type           string         `json:"type,omitempty"`
	Positions      []string       `json:"positions,omitempty"`
	Remarks        string         `json:"remarks,omitempty"`
	PublicationURL string         `json:"publicationUrl,omitempty"`
	DatesOfBirth   []PartialDate  `json:"datesOfBirth,omitempty"`
	PlacesOfBirth  []PlaceOfBirth `json:"placesOfBirth,omitempty"`
	Nationalities  []Country      `json:"nationalities,omitempty"`
	Citizenships   []Country      `json:"citizenships,omitempty"`
}

// Names collects defaultName and all aliases, the set the similarity scorer
// runs against.
func (e Entity) Names() []string {
	names := make([]string, 0, 1+len(e.Alias))
	names = append(names, e.DefaultName)
	names = append(names, e.Alias...)
	return names
}

// SearchHit is one raw index match. IndexScore is the index-native relevance
// normalized against the top hit of the same query (0..1). It selects
// candidates only and is never the displayed score.
type SearchHit struct {
	Entity     Entity
	Sanction   *Sanction
	IndexScore float64
}

// RankedResult is the unit the filter engine and report mapper operate on.
// Score is always recomputed from the entity's own name set and the query.
type RankedResult struct {
	Entity   Entity    `json:"entity"`
	Sanction *Sanction `json:"sanction,omitempty"`
	Score    float64   `json:"score"`
}

// SearchParam is the filtered-search request body.
type SearchParam struct {
	FullName    string   `json:"fullName"`
	DOB         string   `json:"dob,omitempty"`
	Nationality []string `json:"nationality,omitempty"`
	Sanction    []string `json:"sanction,omitempty"`
	Type        string   `json:"type,omitempty"`
	MatchRate   float64  `json:"matchRate,omitempty"`
}

// SearchResponse is the envelope both search variants return. ResultsFile is
// null when no match was found and no export was generated.
type SearchResponse struct {
	ResultsCount int            `json:"resultsCount"`
	ResultsFile  *string        `json:"resultsFile"`
	Results      []RankedResult `json:"results"`
}

// Row style tags for the export renderer. Presentation stays outside the
// mapper; rows only carry the tag.
type RowStyle int

const (
	StyleNoMatch RowStyle = 0
	StyleSummary RowStyle = 1
	StyleMatch   RowStyle = 3
)

// ExportRow is one flattened spreadsheet row.
type ExportRow struct {
	Style       RowStyle
	SearchInput string
	Result      string
	Positions   string
	DOB         string
	Nationality string
	MatchRate   string
	Link        string
}
