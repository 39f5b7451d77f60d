package handlers

import (
	"github.com/Ayash-Bera/vbm-explorer/internal/corpus"
	"github.com/Ayash-Bera/vbm-explorer/internal/database"
	"github.com/Ayash-Bera/vbm-explorer/internal/health"
	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/middleware"
	"github.com/Ayash-Bera/vbm-explorer/internal/narration"
	"github.com/Ayash-Bera/vbm-explorer/internal/services"
	"github.com/Ayash-Bera/vbm-explorer/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dependencies are the components the HTTP layer serves. Cache may be nil.
type Dependencies struct {
	Corpus         *corpus.Corpus
	Explorer       *services.ExplorerService
	Relay          *narration.Relay
	Guard          *session.Guard
	Health         *health.HealthChecker
	Cache          *database.Cache
	AllowedOrigins []string
	Logger         *logrus.Logger
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.SessionID())

	queryHandler := NewQueryHandler(deps.Explorer, deps.Cache, deps.Logger)
	chatHandler := NewChatHandler(deps.Relay, deps.Logger)
	analysisHandler := NewAnalysisHandler(deps.Corpus)
	statusHandler := NewStatusHandler(deps.Guard, deps.Health, deps.Explorer, deps.Logger)
	guarded := middleware.SessionGuard(deps.Guard, deps.Logger)

	router.GET("/health", statusHandler.HandleHealth)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		api.POST("/query", guarded, queryHandler.HandleQuery)
		api.POST("/chat", guarded, chatHandler.HandleChat)
		api.POST("/feedback", queryHandler.HandleFeedback)
		api.GET("/examples", queryHandler.HandleExamples)
		api.GET("/session", statusHandler.HandleSession)
		api.GET("/corpus", analysisHandler.HandleCorpus)
		api.GET("/analyses/:id", analysisHandler.HandleAnalysis)
		api.GET("/analyses/:id/plot.svg", analysisHandler.HandlePlot)
		api.GET("/baseline/:outcome", analysisHandler.HandleBaseline)
	}

	return router
}
