package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darukaearth/rag-server/models"
	"github.com/darukaearth/rag-server/services"
)

// AdminController exposes collection inspection and destructive maintenance
// operations.
type AdminController struct {
	manager *services.CollectionManager
}

// NewAdminController injects the collection manager.
func NewAdminController(manager *services.CollectionManager) *AdminController {
	return &AdminController{manager: manager}
}

// ListCollections is the handler for GET /api/v1/collections.
func (c *AdminController) ListCollections(ctx *gin.Context) {
	names, err := c.manager.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.CollectionListResponse{
		Collections: names,
		Total:       len(names),
	})
}

// InspectCollection is the handler for GET /api/v1/collections/:name.
func (c *AdminController) InspectCollection(ctx *gin.Context) {
	info, err := c.manager.Inspect(ctx.Request.Context(), ctx.Param("name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}

// DeleteCollection is the handler for DELETE /api/v1/collections/:name.
// Destructive; requires ?confirm=true.
func (c *AdminController) DeleteCollection(ctx *gin.Context) {
	name := ctx.Param("name")
	if err := c.manager.Delete(ctx.Request.Context(), name, confirmFlag(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Deleted collection %q", name)})
}

// Stats is the handler for GET /api/v1/stats.
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.manager.Stats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ClearAll is the handler for DELETE /api/v1/admin/clear. Drops every
// collection; requires ?confirm=true.
func (c *AdminController) ClearAll(ctx *gin.Context) {
	cleared, err := c.manager.ClearAll(ctx.Request.Context(), confirmFlag(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.ClearResponse{
		CollectionsCleared: cleared,
		Message:            fmt.Sprintf("Cleared %d collections", len(cleared)),
	})
}
