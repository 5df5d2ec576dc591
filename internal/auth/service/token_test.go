package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/trailpost/trailpost/internal/auth/service"
	"github.com/trailpost/trailpost/pkg/idx"
	"github.com/trailpost/trailpost/pkg/jwtx"
)

func testTokenService(t *testing.T) *service.TokenService {
	t.Helper()
	key, err := jwtx.NewKeyMaterial(
		"01234567890123456789012345678901", "svc", "clients")
	require.NoError(t, err)
	return service.NewTokenService(key, nil)
}

// craftToken signs claims with explicit issued-at and expiry offsets from
// now, bypassing Issue, so refresh-window behaviour can be tested without
// waiting.
func craftToken(t *testing.T, svc *service.TokenService, iatOffset, expOffset time.Duration) string {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    svc.Key.Issuer(),
			Subject:   "u-1",
			Audience:  jwt.ClaimStrings{svc.Key.Audience()},
			IssuedAt:  jwt.NewNumericDate(now.Add(iatOffset)),
			ExpiresAt: jwt.NewNumericDate(now.Add(expOffset)),
			ID:        idx.New().String(),
		},
		Username: "ada",
		Email:    "ada@example.com",
	}

	token, err := jwtx.Encode(claims, svc.Key)
	require.NoError(t, err)
	return token
}

func TestIssueDefaultLifetime(t *testing.T) {
	svc := testTokenService(t)

	issued, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.Decode(issued.Token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, 24*time.Hour, claims.Lifetime())
}

func TestIssueExtendedLifetime(t *testing.T) {
	svc := testTokenService(t)

	issued, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", true)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.Decode(issued.Token)
	require.NoError(t, err)
	require.Equal(t, 30*24*time.Hour, claims.Lifetime())
}

func TestIssueEmptySubject(t *testing.T) {
	svc := testTokenService(t)

	for _, subject := range []string{"", "   "} {
		_, err := svc.Issue(context.Background(), subject, "ada", "ada@example.com", false)
		require.ErrorIs(t, err, service.ErrInvalidArgument)
	}
}

func TestIssueProducesUniqueTokens(t *testing.T) {
	svc := testTokenService(t)

	a, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", false)
	require.NoError(t, err)
	b, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", false)
	require.NoError(t, err)

	require.NotEqual(t, a.Token, b.Token)

	ca, err := svc.Decode(a.Token)
	require.NoError(t, err)
	cb, err := svc.Decode(b.Token)
	require.NoError(t, err)
	require.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateCollapsesFailures(t *testing.T) {
	svc := testTokenService(t)

	issued, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", false)
	require.NoError(t, err)

	require.NotNil(t, svc.Validate(issued.Token))

	for _, bad := range []string{
		"",
		"garbage",
		"a.b.c",
		craftToken(t, svc, -2*time.Hour, -time.Second), // expired
	} {
		require.Nil(t, svc.Validate(bad))
	}
}

func TestExtractIdentity(t *testing.T) {
	svc := testTokenService(t)

	issued, err := svc.Issue(context.Background(), "u-42", "ada", "ada@example.com", false)
	require.NoError(t, err)

	require.Equal(t, "u-42", svc.ExtractIdentity(issued.Token))
	require.Empty(t, svc.ExtractIdentity("not-a-token"))
}

func TestRefreshNotYetEligible(t *testing.T) {
	svc := testTokenService(t)

	// Fresh 24h token: nowhere near the refresh window.
	issued, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", false)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), issued.Token)
	require.NoError(t, err)
	require.Nil(t, refreshed, "refresh outside the window is a no-op")
}

func TestRefreshInvalidToken(t *testing.T) {
	svc := testTokenService(t)

	refreshed, err := svc.Refresh(context.Background(), "definitely.not.valid")
	require.NoError(t, err)
	require.Nil(t, refreshed)

	expired := craftToken(t, svc, -25*time.Hour, -time.Second)
	refreshed, err = svc.Refresh(context.Background(), expired)
	require.NoError(t, err)
	require.Nil(t, refreshed, "an expired token cannot be refreshed")
}

func TestRefreshWithinWindow(t *testing.T) {
	svc := testTokenService(t)

	// 24h token with 30 minutes left.
	old := craftToken(t, svc, -23*time.Hour-30*time.Minute, 30*time.Minute)

	refreshed, err := svc.Refresh(context.Background(), old)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), refreshed.ExpiresAt, 5*time.Second)

	oldClaims, err := svc.Decode(old)
	require.NoError(t, err)
	newClaims, err := svc.Decode(refreshed.Token)
	require.NoError(t, err)

	require.Equal(t, oldClaims.Subject, newClaims.Subject)
	require.Equal(t, oldClaims.Username, newClaims.Username)
	require.Equal(t, oldClaims.Email, newClaims.Email)
	require.NotEqual(t, oldClaims.ID, newClaims.ID, "refresh mints a fresh token id")
	require.True(t, newClaims.ExpiresAt.After(oldClaims.ExpiresAt.Time),
		"refreshed expiry must be strictly later")
}

func TestRefreshPreservesExtendedIntent(t *testing.T) {
	svc := testTokenService(t)

	// A 30-day token in its final half hour refreshes into another 30-day
	// token, not a 24-hour one.
	old := craftToken(t, svc, -30*24*time.Hour+30*time.Minute, 30*time.Minute)

	refreshed, err := svc.Refresh(context.Background(), old)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), refreshed.ExpiresAt, 5*time.Second)
}

func TestRefreshIntentInferenceBoundary(t *testing.T) {
	svc := testTokenService(t)

	// Inference is a lifetime heuristic: anything over 25h counts as
	// extended, so a 26h token refreshes into a 30-day one.
	old := craftToken(t, svc, -26*time.Hour+30*time.Minute, 30*time.Minute)

	refreshed, err := svc.Refresh(context.Background(), old)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), refreshed.ExpiresAt, 5*time.Second)
}

func TestConcurrentValidation(t *testing.T) {
	svc := testTokenService(t)

	issued, err := svc.Issue(context.Background(), "u-1", "ada", "ada@example.com", false)
	require.NoError(t, err)

	const (
		workers    = 2
		iterations = 1000
	)

	var wg sync.WaitGroup
	errs := make(chan error, workers*iterations)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				claims, err := svc.Decode(issued.Token)
				if err != nil {
					errs <- err
					continue
				}
				if claims.Subject != "u-1" || claims.Username != "ada" {
					errs <- jwtx.ErrClaimsInvalid
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent validation failed: %v", err)
	}
}
