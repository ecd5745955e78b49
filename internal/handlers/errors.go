package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casino-minigames/internal/apperror"
	"casino-minigames/internal/blackjack"
	"casino-minigames/internal/coinflip"
	"casino-minigames/internal/crash"
	"casino-minigames/internal/dice"
	"casino-minigames/internal/hilo"
	"casino-minigames/internal/mines"
	"casino-minigames/internal/plinko"
	"casino-minigames/internal/quota"
	"casino-minigames/internal/services"
)

var statusByError = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		apperror.ErrInvalidBet,
		apperror.ErrInsufficientBalance,
		apperror.ErrInvalidAmount,
		blackjack.ErrUnknownDifficulty,
		mines.ErrInvalidMineCount,
		mines.ErrCellOutOfRange,
		crash.ErrInvalidAutoCashOut,
		plinko.ErrUnknownTable,
		dice.ErrInvalidPick,
		hilo.ErrUnknownGuess,
		coinflip.ErrUnknownSide,
		services.ErrSeedMismatch,
	}},
	{http.StatusUnauthorized, []error{apperror.ErrUnauthorized}},
	{http.StatusNotFound, []error{
		apperror.ErrSaveNotFound,
		apperror.ErrNoActiveRound,
		apperror.ErrRoundNotFound,
	}},
	{http.StatusConflict, []error{
		apperror.ErrRoundInProgress,
		apperror.ErrRoundResolved,
		mines.ErrCellRevealed,
		mines.ErrNothingRevealed,
		hilo.ErrNothingWon,
		quota.ErrRunFailed,
	}},
	{http.StatusTooManyRequests, []error{apperror.ErrRateLimited}},
}

func statusOf(err error) int {
	for _, group := range statusByError {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, message string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
	})
}
