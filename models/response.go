package models

import "time"

// SourceDocument is one retrieved chunk returned for provenance.
type SourceDocument struct {
	Content  string                 `json:"content"`
	Source   string                 `json:"source"`
	Page     int                    `json:"page,omitempty"`
	ChunkID  string                 `json:"chunk_id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// QueryResponse is returned by POST /api/v1/query.
type QueryResponse struct {
	Answer    string           `json:"answer"`
	Sources   []SourceDocument `json:"sources"`
	Query     string           `json:"query"`
	SessionID string           `json:"session_id,omitempty"`
}

// ProjectPayload describes the matched or generated project in a pitch.
type ProjectPayload struct {
	Name             string   `json:"name"`
	Source           string   `json:"source"` // "existing" or "generated"
	FocusAreas       []string `json:"focus_areas,omitempty"`
	TargetSpecies    []string `json:"target_species,omitempty"`
	Location         string   `json:"location,omitempty"`
	Description      string   `json:"description"`
	Methodology      string   `json:"methodology,omitempty"`
	ExpectedOutcomes []string `json:"expected_outcomes,omitempty"`
	RelevanceScore   float64  `json:"relevance_score"`
	SourceChunkID    string   `json:"source_chunk_id,omitempty"`
}

// PitchResponse is returned by POST /api/v1/pitch.
type PitchResponse struct {
	Pitch     string           `json:"pitch"`
	Project   ProjectPayload   `json:"project"`
	Sources   []SourceDocument `json:"sources"`
	SessionID string           `json:"session_id,omitempty"`
}

// UploadResponse is returned by POST /api/v1/upload.
type UploadResponse struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
	Collection    string `json:"collection"`
	Message       string `json:"message"`
}

// TextIngestResponse is returned by POST /api/v1/ingest/text.
type TextIngestResponse struct {
	Collection  string `json:"collection"`
	ChunksAdded int    `json:"chunks_added"`
	Message     string `json:"message"`
}

// ChunkPayload is one stored chunk exposed by the inspect endpoint.
type ChunkPayload struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CollectionInfoResponse is returned by GET /api/v1/collections/:name.
type CollectionInfoResponse struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Chunks []ChunkPayload `json:"chunks"`
}

// CollectionListResponse is returned by GET /api/v1/collections.
type CollectionListResponse struct {
	Collections []string `json:"collections"`
	Total       int      `json:"total"`
}

// StatsResponse is returned by GET /api/v1/stats.
type StatsResponse struct {
	TotalCollections    int            `json:"total_collections"`
	TotalChunks         int            `json:"total_chunks"`
	Collections         []string       `json:"collections"`
	ChunksPerCollection map[string]int `json:"chunks_per_collection"`
}

// ClearResponse is returned by DELETE /api/v1/admin/clear.
type ClearResponse struct {
	CollectionsCleared []string `json:"collections_cleared"`
	Message            string   `json:"message"`
}

// TurnPayload is one past exchange in a session.
type TurnPayload struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSummary is one entry in the session list.
type SessionSummary struct {
	SessionID      string `json:"session_id"`
	WebsiteContext string `json:"website_context"`
	TurnCount      int    `json:"turn_count"`
}

// SessionListResponse is returned by GET /api/v1/sessions.
type SessionListResponse struct {
	Sessions      []SessionSummary `json:"sessions"`
	Total         int              `json:"total"`
	WebsiteFilter string           `json:"website_filter,omitempty"`
}

// SessionDetailResponse is returned by GET /api/v1/sessions/:id.
type SessionDetailResponse struct {
	SessionID      string        `json:"session_id"`
	WebsiteContext string        `json:"website_context"`
	TurnCount      int           `json:"turn_count"`
	CreatedAt      time.Time     `json:"created_at"`
	Turns          []TurnPayload `json:"turns"`
}
