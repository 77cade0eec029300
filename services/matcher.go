package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/darukaearth/rag-server/models"
)

// ProjectSource tags where a pitch project came from, so callers cannot
// forget which branch the matcher took.
type ProjectSource string

const (
	ProjectSourceExisting  ProjectSource = "existing"
	ProjectSourceGenerated ProjectSource = "generated"
)

// ProjectMatch is a matched or generated project.
type ProjectMatch struct {
	Name             string
	Source           ProjectSource
	FocusAreas       []string
	TargetSpecies    []string
	Location         string
	Description      string
	Methodology      string
	ExpectedOutcomes []string
	RelevanceScore   float64
	SourceChunkID    string
}

// generatedProject is the JSON schema the LLM is asked to produce.
type generatedProject struct {
	ProjectName      string   `json:"project_name"`
	FocusAreas       []string `json:"focus_areas"`
	TargetSpecies    []string `json:"target_species"`
	Location         string   `json:"location"`
	Description      string   `json:"description"`
	Methodology      string   `json:"methodology"`
	ExpectedOutcomes []string `json:"expected_outcomes"`
}

// ProjectMatcher finds an existing project for a grant query, or asks the LLM
// for a hypothetical one when nothing scores above the threshold.
type ProjectMatcher struct {
	store    VectorStore
	embedder Embedder
	llm      LLM

	collection string
	threshold  float64
}

// NewProjectMatcher builds a matcher over the dedicated projects collection.
func NewProjectMatcher(store VectorStore, embedder Embedder, llm LLM, collection string, threshold float64) *ProjectMatcher {
	return &ProjectMatcher{
		store:      store,
		embedder:   embedder,
		llm:        llm,
		collection: collection,
		threshold:  threshold,
	}
}

// MatchOrGenerate returns the best existing project if its similarity exceeds
// the threshold, otherwise an LLM-generated proposal. Generated projects are
// never persisted.
func (p *ProjectMatcher) MatchOrGenerate(ctx context.Context, grantFocus, requirements, grantContext string, forceGenerate bool) (*ProjectMatch, error) {
	if strings.TrimSpace(grantFocus) == "" {
		return nil, fmt.Errorf("%w: grant focus must not be empty", models.ErrValidation)
	}

	if !forceGenerate {
		existing, err := p.findExisting(ctx, grantFocus, requirements)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Printf("SERVICE: Matched existing project %q (score: %.2f)", existing.Name, existing.RelevanceScore)
			return existing, nil
		}
	}

	log.Printf("SERVICE: Generating hypothetical project for %q", grantFocus)
	return p.generate(ctx, grantFocus, requirements, grantContext)
}

// findExisting runs a top-1 lookup against the projects collection. A single
// best guess avoids ambiguous multi-candidate merging.
func (p *ProjectMatcher) findExisting(ctx context.Context, grantFocus, requirements string) (*ProjectMatch, error) {
	ok, err := p.store.HasCollection(ctx, p.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if !ok {
		return nil, nil
	}

	searchQuery := grantFocus
	if requirements != "" {
		searchQuery += ". " + requirements
	}
	embedding, err := p.embedder.Embed(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed project query: %w", err)
	}

	results, err := p.store.Query(ctx, p.collection, embedding, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]
	if best.Score <= p.threshold {
		return nil, nil
	}

	return &ProjectMatch{
		Name:             metadataString(best.Metadata, "project_name", "Unnamed Project"),
		Source:           ProjectSourceExisting,
		FocusAreas:       parseList(metadataString(best.Metadata, "focus_areas", "")),
		TargetSpecies:    parseList(metadataString(best.Metadata, "target_species", "")),
		Location:         metadataString(best.Metadata, "location", "India"),
		Description:      best.Text,
		Methodology:      metadataString(best.Metadata, "methodology", ""),
		ExpectedOutcomes: parseList(metadataString(best.Metadata, "expected_outcomes", "")),
		RelevanceScore:   best.Score,
		SourceChunkID:    best.ID,
	}, nil
}

// generate asks the LLM for a proposal and parses its JSON. A parse failure
// falls back to a deterministic capability-based project rather than erroring
// the whole pitch.
func (p *ProjectMatcher) generate(ctx context.Context, grantFocus, requirements, grantContext string) (*ProjectMatch, error) {
	prompt := buildProjectGenPrompt(grantFocus, requirements, grantContext)
	response, err := p.llm.Complete(ctx, projectGenSystemPrompt, prompt, 0.3)
	if err != nil {
		return nil, err
	}

	var parsed generatedProject
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &parsed); err != nil {
		log.Printf("SERVICE WARN: could not parse generated project JSON: %v", err)
		return fallbackProject(grantFocus), nil
	}
	if parsed.ProjectName == "" {
		parsed.ProjectName = "Generated Conservation Project"
	}
	return &ProjectMatch{
		Name:             parsed.ProjectName,
		Source:           ProjectSourceGenerated,
		FocusAreas:       parsed.FocusAreas,
		TargetSpecies:    parsed.TargetSpecies,
		Location:         parsed.Location,
		Description:      parsed.Description,
		Methodology:      parsed.Methodology,
		ExpectedOutcomes: parsed.ExpectedOutcomes,
		RelevanceScore:   1.0,
	}, nil
}

// SeedProject persists a known project into the projects collection so later
// pitches can match it.
func (p *ProjectMatcher) SeedProject(ctx context.Context, req models.SeedProjectRequest) (string, error) {
	embedding, err := p.embedder.Embed(ctx, req.Name+". "+req.Description)
	if err != nil {
		return "", fmt.Errorf("failed to embed project description: %w", err)
	}

	if err := p.store.EnsureCollection(ctx, p.collection); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	id := fmt.Sprintf("project_%s", uuid.New().String()[:8])
	record := Record{
		ID:        id,
		Text:      req.Description,
		Embedding: embedding,
		Metadata: map[string]interface{}{
			"project_name":      req.Name,
			"focus_areas":       strings.Join(req.FocusAreas, ", "),
			"target_species":    strings.Join(req.TargetSpecies, ", "),
			"location":          req.Location,
			"methodology":       req.Methodology,
			"expected_outcomes": strings.Join(req.ExpectedOutcomes, ", "),
			"status":            req.Status,
		},
	}
	if err := p.store.AddRecords(ctx, p.collection, []Record{record}); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	log.Printf("SERVICE: Seeded project %q into %q", req.Name, p.collection)
	return id, nil
}

func fallbackProject(grantFocus string) *ProjectMatch {
	return &ProjectMatch{
		Name:          "Daruka Conservation Initiative - " + grantFocus,
		Source:        ProjectSourceGenerated,
		FocusAreas:    []string{grantFocus},
		TargetSpecies: []string{},
		Location:      "India",
		Description:   fmt.Sprintf("AI-powered conservation project focusing on %s using Daruka.Earth's dMRV platform.", grantFocus),
		Methodology:   "Bioacoustic monitoring, satellite imagery analysis, and community-driven data collection.",
		ExpectedOutcomes: []string{
			"Species population baseline",
			"Ecosystem health metrics",
			"Community engagement",
		},
		RelevanceScore: 0.8,
	}
}

// stripCodeFence removes a surrounding markdown code block, if any.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	body := parts[1]
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

// parseList splits a comma-separated metadata value.
func parseList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
