package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prylogi/logi-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. Tokens
// are minted by the identity provider; this side mostly verifies, but the
// mint path is kept for tooling and tests.
type AccessTokenPayload struct {
	ActorID   uuid.UUID
	ActorName string
	Role      enums.ActorRole
}

// AccessTokenClaims represents the typed JWT presented by back-office
// clients.
type AccessTokenClaims struct {
	ActorID   uuid.UUID       `json:"actor_id"`
	ActorName string          `json:"actor_name"`
	Role      enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
