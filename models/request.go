package models

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Query          string `json:"query" binding:"required"`
	Collection     string `json:"collection,omitempty"`
	TopK           int    `json:"top_k,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	WebsiteContext string `json:"website_context,omitempty"`
}

// PitchRequest is the body of POST /api/v1/pitch. GrantFocus drives both the
// project match and the pitch framing.
type PitchRequest struct {
	GrantFocus     string `json:"grant_focus" binding:"required"`
	Requirements   string `json:"requirements,omitempty"`
	GrantContext   string `json:"grant_context,omitempty"`
	TopK           int    `json:"top_k,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	WebsiteContext string `json:"website_context,omitempty"`
	ForceGenerate  bool   `json:"force_generate,omitempty"`
}

// TextContent is one piece of text to ingest.
type TextContent struct {
	Content  string                 `json:"content" binding:"required"`
	Title    string                 `json:"title,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// TextIngestRequest is the body of POST /api/v1/ingest/text.
type TextIngestRequest struct {
	Collection string        `json:"collection" binding:"required"`
	Contents   []TextContent `json:"contents" binding:"required"`
}

// SeedProjectRequest persists a known project into the projects collection so
// the pitch workflow can match against it.
type SeedProjectRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description" binding:"required"`
	FocusAreas       []string `json:"focus_areas,omitempty"`
	TargetSpecies    []string `json:"target_species,omitempty"`
	Location         string   `json:"location,omitempty"`
	Methodology      string   `json:"methodology,omitempty"`
	ExpectedOutcomes []string `json:"expected_outcomes,omitempty"`
	Status           string   `json:"status,omitempty"`
}
