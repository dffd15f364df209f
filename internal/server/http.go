package server

import (
	"time"

	"jobfit/internal/config"
	jobfitErrors "jobfit/internal/errors"
	"jobfit/internal/pipeline"
	"jobfit/internal/scoring"
)

// AnalyzeRequest starts one analysis session. Each document is given either
// as a source (URL or file path) or as inline text.
type AnalyzeRequest struct {
	ResumeSource string `json:"resumeSource,omitempty"`
	JobSource    string `json:"jobSource,omitempty"`
	ResumeText   string `json:"resumeText,omitempty"`
	JobText      string `json:"jobText,omitempty"`
}

// RevisionRequest carries recruiter feedback for an existing session
type RevisionRequest struct {
	Comment string `json:"comment"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Analysis pipeline state shared across requests
	Engine   *scoring.Engine
	Registry *pipeline.Registry
	Store    *pipeline.Store

	// Logger
	Logger *jobfitErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *jobfitErrors.Logger) (*Server, error) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	// Scoring config was validated at startup; the engine is shared by all
	// sessions so every request scores against the same snapshot.
	engineCfg, err := appCfg.Scoring.EngineConfig(time.Now())
	if err != nil {
		return nil, err
	}
	engine, err := scoring.NewEngine(engineCfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Engine:         engine,
		Registry:       pipeline.NewRegistry(),
		Store:          pipeline.NewStore(appCfg.App.ReportDir, logger),
		Logger:         logger,
	}, nil
}
