package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casino-minigames/internal/middleware"
	"casino-minigames/internal/models"
	"casino-minigames/internal/services"
)

type GameHandler struct {
	casino *services.Casino
}

func NewGameHandler(casino *services.Casino) *GameHandler {
	return &GameHandler{casino: casino}
}

func (h *GameHandler) respond(c *gin.Context, message string, view services.View, err error) {
	if err != nil {
		respondError(c, message, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *GameHandler) DealBlackjack(c *gin.Context) {
	var req models.BlackjackDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.DealBlackjack(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount, req.Difficulty)
	h.respond(c, "Failed to deal", view, err)
}

func (h *GameHandler) HitBlackjack(c *gin.Context) {
	view, err := h.casino.HitBlackjack(c.Request.Context(), c.GetString(middleware.KeySaveID))
	h.respond(c, "Failed to hit", view, err)
}

func (h *GameHandler) StandBlackjack(c *gin.Context) {
	view, err := h.casino.StandBlackjack(c.Request.Context(), c.GetString(middleware.KeySaveID))
	h.respond(c, "Failed to stand", view, err)
}

func (h *GameHandler) ResetBlackjack(c *gin.Context) {
	h.reset(c, h.casino.ResetBlackjack(c.Request.Context(), c.GetString(middleware.KeySaveID)))
}

func (h *GameHandler) StartMines(c *gin.Context) {
	var req models.MinesStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.StartMines(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount, req.Mines)
	h.respond(c, "Failed to start mines", view, err)
}

func (h *GameHandler) RevealMine(c *gin.Context) {
	var req models.MinesRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.RevealMine(c.Request.Context(), c.GetString(middleware.KeySaveID), *req.Cell)
	h.respond(c, "Failed to reveal cell", view, err)
}

func (h *GameHandler) CashoutMines(c *gin.Context) {
	view, err := h.casino.CashOutMines(c.Request.Context(), c.GetString(middleware.KeySaveID))
	h.respond(c, "Failed to cashout", view, err)
}

func (h *GameHandler) ResetMines(c *gin.Context) {
	h.reset(c, h.casino.ResetMines(c.Request.Context(), c.GetString(middleware.KeySaveID)))
}

func (h *GameHandler) StartCrash(c *gin.Context) {
	var req models.CrashStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.StartCrash(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount, req.AutoCashOut)
	h.respond(c, "Failed to start crash", view, err)
}

func (h *GameHandler) CashoutCrash(c *gin.Context) {
	view, err := h.casino.CashOutCrash(c.Request.Context(), c.GetString(middleware.KeySaveID))
	h.respond(c, "Failed to cashout", view, err)
}

func (h *GameHandler) GetCrash(c *gin.Context) {
	view, err := h.casino.CrashState(c.Request.Context(), c.GetString(middleware.KeySaveID))
	h.respond(c, "Failed to get crash round", view, err)
}

func (h *GameHandler) DropPlinko(c *gin.Context) {
	var req models.PlinkoDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.DropPlinko(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount, req.Table)
	h.respond(c, "Failed to drop", view, err)
}

func (h *GameHandler) PlayDice(c *gin.Context) {
	var req models.DiceRollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.RollDice(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount, req.Pick)
	h.respond(c, "Failed to roll", view, err)
}

func (h *GameHandler) StartHilo(c *gin.Context) {
	var req models.HiloStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.StartHilo(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount)
	h.respond(c, "Failed to start higher or lower", view, err)
}

func (h *GameHandler) GuessHilo(c *gin.Context) {
	var req models.HiloGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.GuessHilo(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Guess)
	h.respond(c, "Failed to guess", view, err)
}

func (h *GameHandler) CashoutHilo(c *gin.Context) {
	view, err := h.casino.CashOutHilo(c.Request.Context(), c.GetString(middleware.KeySaveID))
	h.respond(c, "Failed to cashout", view, err)
}

func (h *GameHandler) ResetHilo(c *gin.Context) {
	h.reset(c, h.casino.ResetHilo(c.Request.Context(), c.GetString(middleware.KeySaveID)))
}

func (h *GameHandler) FlipCoin(c *gin.Context) {
	var req models.CoinFlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.FlipCoin(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount, req.Call)
	h.respond(c, "Failed to flip", view, err)
}

func (h *GameHandler) SpinQuota(c *gin.Context) {
	var req models.QuotaSpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.casino.SpinQuota(c.Request.Context(), c.GetString(middleware.KeySaveID), req.Amount)
	h.respond(c, "Failed to spin", view, err)
}

func (h *GameHandler) GetQuota(c *gin.Context) {
	run, err := h.casino.QuotaState(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to get quota run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

func (h *GameHandler) ResetQuota(c *gin.Context) {
	run, err := h.casino.ResetQuota(c.Request.Context(), c.GetString(middleware.KeySaveID))
	if err != nil {
		respondError(c, "Failed to reset quota run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

func (h *GameHandler) reset(c *gin.Context, err error) {
	if err != nil {
		respondError(c, "Failed to reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Round reset"})
}
