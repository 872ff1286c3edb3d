package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// AccessTokenClaims represents the typed JWT presented by clients. Token
// issuance lives in the identity service; this backend only verifies.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the explicit caller identity threaded into every core operation.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
}
