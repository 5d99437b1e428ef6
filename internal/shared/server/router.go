package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-insight/internal/analysis"
	"resume-insight/internal/config"
	"resume-insight/internal/llm"
	"resume-insight/internal/llm/groq"
	"resume-insight/internal/shared/metrics"
	"resume-insight/internal/shared/server/middleware"
	"resume-insight/internal/shared/server/respond"
)

// Analysis calls are expensive provider round trips, so the analyses
// group gets a tighter bucket than the rest of the API.
var analysisRateRule = middleware.RateLimitRule{Rate: 1, Burst: 5}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	provider, err := groq.NewClient(cfg.GroqAPIKey, cfg.LLMTimeout, cfg.LLMFallbackModel)
	if err != nil {
		return nil, err
	}
	client := llm.NewBreaking(llm.NewRetrying(provider, cfg.LLMMaxRetries))

	svc := &analysis.Service{
		LLM:    client,
		Prompt: llm.Builder{MaxFieldChars: cfg.MaxPromptFieldChars},
		Options: llm.Options{
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		},
	}
	handler := analysis.NewHandler(svc, cfg.LLMModel, cfg.MaxUploadBytes)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	analyses := api.Group("")
	analyses.Use(middleware.RateLimit(middleware.NewRateLimiter(nil), analysisRateRule))
	handler.RegisterRoutes(analyses)

	r.GET("/metrics", metrics.Handler())

	return r, nil
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
