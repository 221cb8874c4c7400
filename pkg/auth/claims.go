package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/dronemart-backend/pkg/enums"
)

// AccessTokenPayload is what MintAccessToken signs: the shopper or catalog
// admin, their role, and the refresh session the token belongs to.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI binds the token to its refresh session. Generated when empty.
	JTI string
}

// AccessTokenClaims is the JWT body. Subject repeats UserID as a string.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// CanManageCatalog reports whether the token may use the admin product routes.
func (c *AccessTokenClaims) CanManageCatalog() bool {
	return c != nil && c.Role == enums.UserRoleAdmin
}
