package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "trailpost-auth", cfg.Issuer)
	require.Equal(t, "trailpost", cfg.Audience)
	require.Equal(t, 24*time.Hour, cfg.AccessTTL)
	require.Equal(t, 30*24*time.Hour, cfg.ExtendedTTL)
	require.Equal(t, time.Hour, cfg.RefreshWindow)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_SIGNING_SECRET", "01234567890123456789012345678901")
	t.Setenv("AUTH_ISSUER", "issuer-x")
	t.Setenv("AUTH_AUDIENCE", "aud-x")
	t.Setenv("AUTH_ACCESS_TTL", "2h")
	t.Setenv("AUTH_EXTENDED_TTL", "96h")
	t.Setenv("AUTH_REFRESH_WINDOW", "15m")
	t.Setenv("PORT", "9090")

	cfg := LoadConfig()

	require.Equal(t, "01234567890123456789012345678901", cfg.SigningSecret)
	require.Equal(t, "issuer-x", cfg.Issuer)
	require.Equal(t, "aud-x", cfg.Audience)
	require.Equal(t, 2*time.Hour, cfg.AccessTTL)
	require.Equal(t, 96*time.Hour, cfg.ExtendedTTL)
	require.Equal(t, 15*time.Minute, cfg.RefreshWindow)
	require.Equal(t, 9090, cfg.Port)
}

func TestDurationFallsBackToMinutes(t *testing.T) {
	t.Setenv("AUTH_REFRESH_WINDOW", "45")

	cfg := LoadConfig()
	require.Equal(t, 45*time.Minute, cfg.RefreshWindow)
}

func TestInitSigningKeyRejectsShortSecret(t *testing.T) {
	cfg := LoadConfig()
	cfg.SigningSecret = "too short"

	_, err := InitSigningKey(cfg, discardLogger())
	require.Error(t, err)
}

func TestInitSigningKeyAcceptsGoodSecret(t *testing.T) {
	cfg := LoadConfig()
	cfg.SigningSecret = "01234567890123456789012345678901"

	key, err := InitSigningKey(cfg, discardLogger())
	require.NoError(t, err)
	require.Equal(t, cfg.Issuer, key.Issuer())
	require.Equal(t, cfg.Audience, key.Audience())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
