package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darukaearth/rag-server/models"
	"github.com/darukaearth/rag-server/services"
)

// SessionController exposes conversation session inspection and clearing.
type SessionController struct {
	sessions *services.SessionStore
}

// NewSessionController injects the session store.
func NewSessionController(sessions *services.SessionStore) *SessionController {
	return &SessionController{sessions: sessions}
}

// List is the handler for GET /api/v1/sessions. Optionally filtered by
// ?website_context=.
func (c *SessionController) List(ctx *gin.Context) {
	filter := ctx.Query("website_context")
	summaries := c.sessions.List(filter)
	if summaries == nil {
		summaries = []models.SessionSummary{}
	}
	ctx.JSON(http.StatusOK, models.SessionListResponse{
		Sessions:      summaries,
		Total:         len(summaries),
		WebsiteFilter: filter,
	})
}

// Get is the handler for GET /api/v1/sessions/:id.
func (c *SessionController) Get(ctx *gin.Context) {
	detail, err := c.sessions.Get(ctx.Param("id"), ctx.Query("website_context"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	// Long answers are trimmed for the inspection view.
	for i, turn := range detail.Turns {
		detail.Turns[i].Answer = services.TruncateRunes(turn.Answer, 200)
	}
	ctx.JSON(http.StatusOK, detail)
}

// Clear is the handler for DELETE /api/v1/sessions/:id. Requires
// ?confirm=true.
func (c *SessionController) Clear(ctx *gin.Context) {
	id := ctx.Param("id")
	website := ctx.Query("website_context")
	if err := c.sessions.Clear(id, website, confirmFlag(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Cleared session %q", id),
	})
}

// ClearAll is the handler for DELETE /api/v1/sessions. Requires
// ?confirm=true; optionally scoped to one website context.
func (c *SessionController) ClearAll(ctx *gin.Context) {
	website := ctx.Query("website_context")
	cleared, err := c.sessions.ClearAll(website, confirmFlag(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Cleared %d sessions", cleared),
	})
}
