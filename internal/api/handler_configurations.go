package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"launder-manager-backend/internal/model"
	"launder-manager-backend/internal/service"
)

// UploadConfiguration handles POST /api/proprietors/upload-configuration.
// The body is a full proprietor graph; ids are assigned by the server.
func (h *Handler) UploadConfiguration(c *gin.Context) {
	var cfg model.Proprietor
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configurations.SaveAndBroadcast(c.Request.Context(), &cfg); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuration uploaded successfully."})
}

// ListConfigurations handles GET /api/proprietors.
func (h *Handler) ListConfigurations(c *gin.Context) {
	proprietors, err := h.store.GetAllProprietors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve configurations"})
		return
	}
	c.JSON(http.StatusOK, proprietors)
}

// GetConfiguration handles GET /api/proprietors/{id}.
func (h *Handler) GetConfiguration(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid proprietor ID"})
		return
	}

	proprietor, err := h.store.GetProprietorByID(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve configuration"})
		return
	}
	if proprietor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "proprietor not found"})
		return
	}
	c.JSON(http.StatusOK, proprietor)
}
