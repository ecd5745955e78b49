package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"casino-minigames/internal/logger"
	"casino-minigames/internal/middleware"
	"casino-minigames/internal/services"
)

type RouterDeps struct {
	Casino  *services.Casino
	JWT     *services.JWTService
	Store   *services.RedisService
	Hub     *WebSocketHub
	Metrics *services.Metrics
	Log     *zap.Logger

	// MetricsHandler serves /metrics when set.
	MetricsHandler   http.Handler
	ActionsPerMinute int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.Gin(deps.Log))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	saveHandler := NewSaveHandler(deps.Casino, deps.JWT)
	userHandler := NewUserHandler(deps.Casino)
	gameHandler := NewGameHandler(deps.Casino)
	wsHandler := NewWebSocketHandler(deps.Casino, deps.Hub)

	saves := router.Group("/saves")
	{
		saves.POST("", saveHandler.Create)
		saves.GET("", saveHandler.List)
		saves.POST("/:id/load", saveHandler.Load)
		saves.DELETE("/:id", saveHandler.Delete)
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.JWT))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.POST("/save", userHandler.Save)
		protected.GET("/history", userHandler.GetHistory)
		protected.GET("/history/rounds/:id", userHandler.GetRoundNet)
		protected.GET("/ws", wsHandler.HandleWebSocket)

		fairness := protected.Group("/fairness")
		{
			fairness.GET("", userHandler.GetVerificationData)
			fairness.GET("/revealed", userHandler.GetRevealedSeeds)
			fairness.POST("/client-seed", userHandler.SetClientSeed)
			fairness.POST("/rotate", userHandler.RotateSeed)
			fairness.POST("/verify/crash", userHandler.VerifyCrash)
		}

		actions := protected.Group("")
		if deps.ActionsPerMinute > 0 {
			actions.Use(middleware.RateLimitMiddleware(deps.Store, deps.ActionsPerMinute, time.Minute))
		}

		blackjack := actions.Group("/blackjack")
		{
			blackjack.POST("/deal", gameHandler.DealBlackjack)
			blackjack.POST("/hit", gameHandler.HitBlackjack)
			blackjack.POST("/stand", gameHandler.StandBlackjack)
			blackjack.POST("/reset", gameHandler.ResetBlackjack)
		}

		mines := actions.Group("/mines")
		{
			mines.POST("/start", gameHandler.StartMines)
			mines.POST("/reveal", gameHandler.RevealMine)
			mines.POST("/cashout", gameHandler.CashoutMines)
			mines.POST("/reset", gameHandler.ResetMines)
		}

		crash := actions.Group("/crash")
		{
			crash.GET("", gameHandler.GetCrash)
			crash.POST("/start", gameHandler.StartCrash)
			crash.POST("/cashout", gameHandler.CashoutCrash)
		}

		actions.POST("/plinko/drop", gameHandler.DropPlinko)
		actions.POST("/dice/roll", gameHandler.PlayDice)
		actions.POST("/coinflip/flip", gameHandler.FlipCoin)

		hilo := actions.Group("/hilo")
		{
			hilo.POST("/start", gameHandler.StartHilo)
			hilo.POST("/guess", gameHandler.GuessHilo)
			hilo.POST("/cashout", gameHandler.CashoutHilo)
			hilo.POST("/reset", gameHandler.ResetHilo)
		}

		quota := actions.Group("/quota")
		{
			quota.GET("", gameHandler.GetQuota)
			quota.POST("/spin", gameHandler.SpinQuota)
			quota.POST("/reset", gameHandler.ResetQuota)
		}
	}

	return router
}
