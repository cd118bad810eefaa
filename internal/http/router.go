package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"soul-agent/internal/service"
)

const requestIDHeader = "X-Request-ID"

// RouterConfig agrupa handlers y middlewares opcionales del router.
type RouterConfig struct {
	Logger    *zap.Logger
	Suggest   *SuggestHandler
	Persona   *PersonaHandler
	Peer      *PeerHandler
	Scenario  *ScenarioHandler
	Limiter   service.RateLimiter // nil: sin limite
	JWT       *service.JWTService // nil o sin secreto: API abierta
	StaticDir string
}

// NewRouter configura el router de Gin con middlewares, rutas /api y el frontend estatico.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", jsonContentTypeMiddleware())
	if cfg.JWT.Enabled() {
		api.Use(JWTAuthMiddleware(cfg.JWT))
	}

	api.POST("/suggest", rateLimitMiddleware(cfg.Limiter, "suggest"), cfg.Suggest.Suggest)
	api.POST("/peer/reply", rateLimitMiddleware(cfg.Limiter, "peer"), cfg.Peer.Reply)
	api.POST("/scenario/analyze", rateLimitMiddleware(cfg.Limiter, "scenario"), cfg.Scenario.Analyze)

	mbti := api.Group("/mbti")
	mbti.GET("/questions", cfg.Persona.Questions)
	mbti.POST("/submit", cfg.Persona.SubmitMBTI)
	mbti.POST("/infer-from-chat", rateLimitMiddleware(cfg.Limiter, "infer"), cfg.Persona.InferMBTI)

	api.GET("/persona", cfg.Persona.GetPersona)
	api.POST("/persona/apply", cfg.Persona.ApplyPersona)

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = "frontend"
	}
	files := http.FileServer(http.Dir(staticDir))
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

// requestIDMiddleware propaga X-Request-ID o genera uno nuevo.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// corsMiddleware abre la API a cualquier origen; el frontend puede servirse aparte.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		reqHeaders := c.GetHeader("Access-Control-Request-Headers")
		if reqHeaders == "" {
			reqHeaders = "*"
		}
		h.Set("Access-Control-Allow-Headers", reqHeaders)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// rateLimitMiddleware limita por ruta y cliente (JWT client si existe, si no IP).
func rateLimitMiddleware(limiter service.RateLimiter, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		who := c.ClientIP()
		if claims, ok := GetAuthClaims(c); ok && claims.Client != "" {
			who = claims.Client
		}
		if !limiter.Allow(c.Request.Context(), route+":"+who) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": service.ErrRateLimited.Error()})
			return
		}
		c.Next()
	}
}
