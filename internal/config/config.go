package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Evaluation result strategies; see EvaluationResultStrategy.
const (
	EvaluationStrategyShared   = "shared"
	EvaluationStrategyPerIndex = "per_index"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	TokenTTL               time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SimilarityServiceURL   string
	GradingServiceURL      string
	ReportServiceURL       string
	AnalysisTimeout        time.Duration
	PlagiarismThreshold    float64
	// EvaluationResultStrategy selects how the grading service's flat result
	// list maps onto submissions: "shared" broadcasts the same rows to every
	// submission in the batch (observed upstream behaviour), "per_index"
	// splits the rows evenly across submissions by file index.
	EvaluationResultStrategy string
	OpenAIAPIKey             string
	QuestionModel            string
	FeedCacheTTL             time.Duration
	MaxUploadMB              int
	// CORSOrigins is the comma-separated list of origins the browser
	// frontends are served from.
	CORSOrigins string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SMARTCHECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Smart Check AI")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "1h")
	v.SetDefault("cloudinary.folder", "smart-check")
	v.SetDefault("analysis.timeout", "30s")
	v.SetDefault("plagiarism.threshold", 75.0)
	v.SetDefault("evaluation.result_strategy", EvaluationStrategyShared)
	v.SetDefault("question.model", "gpt-4o-mini")
	v.SetDefault("feed.cache_ttl", "2m")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("cors.origins", "http://localhost:5173")

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	analysisTimeout, err := time.ParseDuration(v.GetString("analysis.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid analysis timeout: %w", err)
	}

	feedTTL, err := time.ParseDuration(v.GetString("feed.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid feed cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                  v.GetString("app.name"),
		AppEnv:                   v.GetString("app.env"),
		AppPort:                  v.GetString("app.port"),
		DatabaseURL:              v.GetString("database.url"),
		RedisURL:                 v.GetString("redis.url"),
		NATSURL:                  v.GetString("nats.url"),
		JWTSecret:                v.GetString("jwt.secret"),
		TokenTTL:                 tokenTTL,
		CloudinaryCloudName:      v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:         v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:      v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder:   v.GetString("cloudinary.folder"),
		SimilarityServiceURL:     v.GetString("similarity.service_url"),
		GradingServiceURL:        v.GetString("grading.service_url"),
		ReportServiceURL:         v.GetString("report.service_url"),
		AnalysisTimeout:          analysisTimeout,
		PlagiarismThreshold:      v.GetFloat64("plagiarism.threshold"),
		EvaluationResultStrategy: strings.ToLower(v.GetString("evaluation.result_strategy")),
		OpenAIAPIKey:             v.GetString("openai_api_key"),
		QuestionModel:            v.GetString("question.model"),
		FeedCacheTTL:             feedTTL,
		MaxUploadMB:              v.GetInt("max_upload_mb"),
		CORSOrigins:              v.GetString("cors.origins"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("database url must be provided")
	}

	if c.SimilarityServiceURL == "" {
		return fmt.Errorf("similarity service url must be provided")
	}

	if c.GradingServiceURL == "" {
		return fmt.Errorf("grading service url must be provided")
	}

	if c.ReportServiceURL == "" {
		return fmt.Errorf("report service url must be provided")
	}

	if c.PlagiarismThreshold <= 0 || c.PlagiarismThreshold > 100 {
		return fmt.Errorf("plagiarism threshold must be within (0, 100]")
	}

	switch c.EvaluationResultStrategy {
	case EvaluationStrategyShared, EvaluationStrategyPerIndex:
	default:
		return fmt.Errorf("unknown evaluation result strategy %q", c.EvaluationResultStrategy)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}
