package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/darukaearth/rag-server/models"
)

// respondError maps service error kinds onto HTTP statuses. Anything
// unclassified is a 500 with a generic message; the detail stays in the log.
func respondError(ctx *gin.Context, err error) {
	switch {
	case models.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case models.IsPrecondition(err):
		ctx.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case models.IsIngestion(err):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case models.IsUpstream(err):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		log.Printf("CONTROLLER ERROR: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// confirmFlag reads the ?confirm= query parameter guarding destructive calls.
func confirmFlag(ctx *gin.Context) bool {
	return ctx.Query("confirm") == "true"
}
