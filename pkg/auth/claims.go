package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.Role
	SellerID *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued by the campus gateway.
// SellerID is only present for seller-role tokens.
type AccessTokenClaims struct {
	UserID   uuid.UUID  `json:"user_id"`
	Role     enums.Role `json:"role"`
	SellerID *uuid.UUID `json:"seller_id,omitempty"`
	jwt.RegisteredClaims
}
