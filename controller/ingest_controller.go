package controller

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/darukaearth/rag-server/config"
	"github.com/darukaearth/rag-server/models"
	"github.com/darukaearth/rag-server/services"
)

// IngestController handles document and text ingestion.
type IngestController struct {
	cfg     *config.Config
	manager *services.CollectionManager
}

// NewIngestController injects the collection manager.
func NewIngestController(cfg *config.Config, manager *services.CollectionManager) *IngestController {
	return &IngestController{cfg: cfg, manager: manager}
}

// IngestText is the handler for POST /api/v1/ingest/text.
func (c *IngestController) IngestText(ctx *gin.Context) {
	var req models.TextIngestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	reqCtx := ctx.Request.Context()
	total := 0
	for i, item := range req.Contents {
		title := item.Title
		if title == "" {
			title = fmt.Sprintf("Content %d", i+1)
		}
		meta := map[string]interface{}{"type": "website"}
		for k, v := range item.Metadata {
			meta[k] = v
		}
		count, err := c.manager.IngestText(reqCtx, req.Collection, title, item.Content, meta)
		if err != nil {
			respondError(ctx, err)
			return
		}
		total += count
	}
	if total == 0 {
		respondError(ctx, fmt.Errorf("%w: no valid content to ingest", models.ErrValidation))
		return
	}

	ctx.JSON(http.StatusOK, models.TextIngestResponse{
		Collection:  services.SanitizeCollectionName(req.Collection),
		ChunksAdded: total,
		Message:     fmt.Sprintf("Added %d chunks", total),
	})
}

// Upload is the handler for POST /api/v1/upload. Accepts a multipart PDF and
// an optional target collection.
func (c *IngestController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file: " + err.Error()})
		return
	}

	filename := fileHeader.Filename
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		respondError(ctx, fmt.Errorf("%w: unsupported file type: %s (supported: .pdf)", models.ErrValidation, ext))
		return
	}

	collection := ctx.PostForm("collection")
	if collection == "" {
		collection = c.cfg.DefaultCollection
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: could not open upload: %v", models.ErrIngestion, err))
		return
	}
	defer file.Close()

	pages, err := services.ExtractPDF(file)
	if err != nil {
		respondError(ctx, err)
		return
	}

	count, documentID, err := c.manager.IngestPages(ctx.Request.Context(), collection, filename, pages, map[string]interface{}{
		"type": "pdf",
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, models.UploadResponse{
		DocumentID:    documentID,
		Filename:      filename,
		ChunksCreated: count,
		Collection:    services.SanitizeCollectionName(collection),
		Message:       fmt.Sprintf("Successfully processed %s", filename),
	})
}
