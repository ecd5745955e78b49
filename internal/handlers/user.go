package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casino-minigames/internal/middleware"
	"casino-minigames/internal/models"
	"casino-minigames/internal/services"
)

type UserHandler struct {
	casino *services.Casino
}

func NewUserHandler(casino *services.Casino) *UserHandler {
	return &UserHandler{casino: casino}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	profile, err := h.casino.Profile(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *UserHandler) Save(c *gin.Context) {
	profile, err := h.casino.Save(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to save", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *UserHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	txs, err := h.casino.History(c.Request.Context(), c.GetString(middleware.KeySaveID), limit)
	if err != nil {
		respondError(c, "Failed to get history", err)
		return
	}

	bets, err := h.casino.RecentBets(c.Request.Context(), c.GetString(middleware.KeySaveID), limit)
	if err != nil {
		respondError(c, "Failed to get history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs, "recent_bets": bets})
}

func (h *UserHandler) GetRoundNet(c *gin.Context) {
	res, err := h.casino.RoundNet(c.Request.Context(), c.GetString(middleware.KeySaveID), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get round", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) GetVerificationData(c *gin.Context) {
	data, err := h.casino.Fairness(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to get verification data", err)
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *UserHandler) GetRevealedSeeds(c *gin.Context) {
	seeds, err := h.casino.RevealedSeeds(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to get revealed seeds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"seeds": seeds})
}

func (h *UserHandler) SetClientSeed(c *gin.Context) {
	var req models.ClientSeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	data, err := h.casino.SetClientSeed(c.Request.Context(), c.GetString(middleware.KeySaveID), req.ClientSeed)
	if err != nil {
		respondError(c, "Failed to set client seed", err)
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *UserHandler) RotateSeed(c *gin.Context) {
	rotated, err := h.casino.RotateSeed(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to rotate seed", err)
		return
	}

	c.JSON(http.StatusOK, rotated)
}

func (h *UserHandler) VerifyCrash(c *gin.Context) {
	var req models.VerifyCrashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.casino.VerifyCrash(req)
	if err != nil {
		respondError(c, "Verification failed", err)
		return
	}

	c.JSON(http.StatusOK, res)
}
