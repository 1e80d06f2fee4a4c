package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SMARTCHECK_JWT_SECRET", "secret")
	t.Setenv("SMARTCHECK_DATABASE_URL", "postgres://localhost:5432/smartcheck")
	t.Setenv("SMARTCHECK_SIMILARITY_SERVICE_URL", "http://localhost:8001")
	t.Setenv("SMARTCHECK_GRADING_SERVICE_URL", "http://localhost:8002")
	t.Setenv("SMARTCHECK_REPORT_SERVICE_URL", "http://localhost:8003")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Smart Check AI", cfg.AppName)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, 30*time.Second, cfg.AnalysisTimeout)
	require.InDelta(t, 75.0, cfg.PlagiarismThreshold, 0.001)
	require.Equal(t, EvaluationStrategyShared, cfg.EvaluationResultStrategy)
	require.Equal(t, 10, cfg.MaxUploadMB)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMARTCHECK_APP_PORT", "9090")
	t.Setenv("SMARTCHECK_PLAGIARISM_THRESHOLD", "60")
	t.Setenv("SMARTCHECK_EVALUATION_RESULT_STRATEGY", "PER_INDEX")
	t.Setenv("SMARTCHECK_ANALYSIS_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.InDelta(t, 60.0, cfg.PlagiarismThreshold, 0.001)
	require.Equal(t, EvaluationStrategyPerIndex, cfg.EvaluationResultStrategy)
	require.Equal(t, 10*time.Second, cfg.AnalysisTimeout)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMARTCHECK_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMissingServiceURLs(t *testing.T) {
	for _, key := range []string{
		"SMARTCHECK_SIMILARITY_SERVICE_URL",
		"SMARTCHECK_GRADING_SERVICE_URL",
		"SMARTCHECK_REPORT_SERVICE_URL",
	} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMARTCHECK_PLAGIARISM_THRESHOLD", "150")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadStrategy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMARTCHECK_EVALUATION_RESULT_STRATEGY", "roulette")

	_, err := Load()
	require.Error(t, err)
}
