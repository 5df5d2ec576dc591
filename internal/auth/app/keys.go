package app

import (
	"fmt"
	"log/slog"

	"github.com/trailpost/trailpost/pkg/jwtx"
)

// InitSigningKey validates the configured secret and binds it to the issuer
// and audience every token will carry. A missing or short secret fails here,
// at startup, rather than surfacing as unverifiable tokens later.
func InitSigningKey(cfg Config, logger *slog.Logger) (jwtx.KeyMaterial, error) {
	key, err := jwtx.NewKeyMaterial(cfg.SigningSecret, cfg.Issuer, cfg.Audience)
	if err != nil {
		return jwtx.KeyMaterial{}, fmt.Errorf("failed to load signing key: %w", err)
	}

	// The secret itself is never logged, only its shape.
	logger.Info("signing key loaded",
		"issuer", cfg.Issuer,
		"audience", cfg.Audience,
		"secret_bytes", len(cfg.SigningSecret),
	)

	return key, nil
}
