package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casino-minigames/internal/models"
	"casino-minigames/internal/services"
)

// SaveHandler manages save slots. Loading a save issues the token that every
// /api route requires.
type SaveHandler struct {
	casino     *services.Casino
	jwtService *services.JWTService
}

func NewSaveHandler(casino *services.Casino, jwtService *services.JWTService) *SaveHandler {
	return &SaveHandler{
		casino:     casino,
		jwtService: jwtService,
	}
}

func (h *SaveHandler) Create(c *gin.Context) {
	var req models.CreateSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	save, err := h.casino.CreateSave(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, "Failed to create save", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"save": save})
}

func (h *SaveHandler) List(c *gin.Context) {
	saves, err := h.casino.ListSaves(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list saves", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saves": saves})
}

func (h *SaveHandler) Load(c *gin.Context) {
	id := c.Param("id")

	profile, err := h.casino.LoadSave(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to load save", err)
		return
	}

	token, err := h.jwtService.GenerateToken(id)
	if err != nil {
		respondError(c, "Failed to issue token", err)
		return
	}

	c.JSON(http.StatusOK, models.LoadSaveResponse{Token: token, Profile: profile})
}

func (h *SaveHandler) Delete(c *gin.Context) {
	if err := h.casino.DeleteSave(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Failed to delete save", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Save deleted"})
}
