package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"launder-manager-backend/internal/model"
	"launder-manager-backend/internal/service"
	"launder-manager-backend/internal/store"
)

type stopMachineRequest struct {
	CyclePrice *float64 `json:"cyclePrice"`
}

// StartMachine handles POST /api/machines/{id}/start.
func (h *Handler) StartMachine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
		return
	}

	status := service.MachineStatus{MachineID: id, State: model.MachineStateRunning}
	if err := h.notifications.ProcessStateChange(c.Request.Context(), status); err != nil {
		h.machineUpdateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine started."})
}

// StopMachine handles POST /api/machines/{id}/stop. The body may carry an
// optional cycle price to accrue into the machine's earnings.
func (h *Handler) StopMachine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid machine ID"})
		return
	}

	var req stopMachineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	status := service.MachineStatus{MachineID: id, State: model.MachineStateStopped, Price: req.CyclePrice}
	if err := h.notifications.ProcessStateChange(c.Request.Context(), status); err != nil {
		h.machineUpdateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine stopped."})
}

func (h *Handler) machineUpdateError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrMachineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
