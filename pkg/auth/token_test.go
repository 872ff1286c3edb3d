package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/pkg/config"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

func signToken(t *testing.T, cfg config.JWTConfig, claims AccessTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "materialdesk"}
	userID := uuid.New()

	signed := signToken(t, cfg, AccessTokenClaims{
		UserID: userID,
		Role:   enums.RoleWarehouse,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	actor := claims.Actor()
	if actor.ID != userID {
		t.Fatalf("unexpected actor id %s", actor.ID)
	}
	if actor.Role != enums.RoleWarehouse {
		t.Fatalf("unexpected role %s", actor.Role)
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "materialdesk"}
	signed := signToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseAccessTokenRejectsUnknownRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "materialdesk"}
	signed := signToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.Role("intern"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "materialdesk"}
	signed := signToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail")
	}
}
