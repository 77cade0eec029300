package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/darukaearth/rag-server/config"
	"github.com/darukaearth/rag-server/models"
	"github.com/darukaearth/rag-server/services"
)

// RAGController handles question answering and the pitch workflow. It wires
// retrieval, session memory, project matching, and answer composition.
type RAGController struct {
	cfg       *config.Config
	retriever *services.Retriever
	composer  *services.AnswerComposer
	sessions  *services.SessionStore
	matcher   *services.ProjectMatcher
}

// NewRAGController injects the service dependencies.
func NewRAGController(cfg *config.Config, retriever *services.Retriever, composer *services.AnswerComposer, sessions *services.SessionStore, matcher *services.ProjectMatcher) *RAGController {
	return &RAGController{
		cfg:       cfg,
		retriever: retriever,
		composer:  composer,
		sessions:  sessions,
		matcher:   matcher,
	}
}

// Query is the handler for POST /api/v1/query.
func (c *RAGController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	collection := req.Collection
	if collection == "" {
		collection = c.cfg.DefaultCollection
	}
	topK := req.TopK
	if topK == 0 {
		topK = c.cfg.DefaultTopK
	}

	reqCtx := ctx.Request.Context()
	result, err := c.retriever.Retrieve(reqCtx, collection, req.Query, topK)
	if err != nil {
		respondError(ctx, err)
		return
	}

	sessionID := req.SessionID
	var history string
	if sessionID != "" {
		history = c.sessions.FormattedHistory(sessionID, req.WebsiteContext)
	}

	answer, err := c.composer.Answer(reqCtx, req.Query, result, history)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if sessionID == "" && req.WebsiteContext != "" {
		sessionID = uuid.New().String()
	}
	if sessionID != "" {
		c.sessions.Append(sessionID, req.WebsiteContext, services.Turn{
			Query:     req.Query,
			Answer:    answer,
			Timestamp: time.Now(),
		})
	}

	ctx.JSON(http.StatusOK, models.QueryResponse{
		Answer:    answer,
		Sources:   services.SourcesForResponse(result),
		Query:     req.Query,
		SessionID: sessionID,
	})
}

// Pitch is the handler for POST /api/v1/pitch. It first tries to match the
// grant against seeded projects, falling back to a generated proposal, then
// composes the pitch from both retrieved context and the project.
func (c *RAGController) Pitch(ctx *gin.Context) {
	var req models.PitchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = c.cfg.DefaultTopK
	}
	reqCtx := ctx.Request.Context()

	project, err := c.matcher.MatchOrGenerate(reqCtx, req.GrantFocus, req.Requirements, req.GrantContext, req.ForceGenerate)
	if err != nil {
		respondError(ctx, err)
		return
	}

	// Context comes from the general knowledge collection, not the project
	// catalog.
	result, err := c.retriever.Retrieve(reqCtx, c.cfg.DefaultCollection, req.GrantFocus, topK)
	if err != nil && !models.IsNotFound(err) {
		respondError(ctx, err)
		return
	}

	var history string
	if req.SessionID != "" {
		history = c.sessions.FormattedHistory(req.SessionID, req.WebsiteContext)
	}

	pitch, err := c.composer.Pitch(reqCtx, req.GrantFocus, result, history, project)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if req.SessionID != "" {
		c.sessions.Append(req.SessionID, req.WebsiteContext, services.Turn{
			Query:     req.GrantFocus,
			Answer:    pitch,
			Timestamp: time.Now(),
		})
	}

	ctx.JSON(http.StatusOK, models.PitchResponse{
		Pitch:     pitch,
		Project:   projectPayload(project),
		Sources:   services.SourcesForResponse(result),
		SessionID: req.SessionID,
	})
}

// SeedProject is the handler for POST /api/v1/projects.
func (c *RAGController) SeedProject(ctx *gin.Context) {
	var req models.SeedProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	id, err := c.matcher.SeedProject(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Project seeded successfully",
		"project_id": id,
	})
}

func projectPayload(p *services.ProjectMatch) models.ProjectPayload {
	if p == nil {
		return models.ProjectPayload{}
	}
	return models.ProjectPayload{
		Name:             p.Name,
		Source:           string(p.Source),
		FocusAreas:       p.FocusAreas,
		TargetSpecies:    p.TargetSpecies,
		Location:         p.Location,
		Description:      p.Description,
		Methodology:      p.Methodology,
		ExpectedOutcomes: p.ExpectedOutcomes,
		RelevanceScore:   p.RelevanceScore,
		SourceChunkID:    p.SourceChunkID,
	}
}
