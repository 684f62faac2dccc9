package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
//
// Multi-tenant invariant: CenterID must be present for all activity; it is
// the already-authorized owner identifier the traffic and analytics cores
// trust. ManagedCenterIDs is populated for manager tokens only and drives
// the multi-center overview fan-out.
type Claims struct {
	jwt.RegisteredClaims

	UserID           string    `json:"user_id"`
	CenterID         int       `json:"center_id"`
	ManagedCenterIDs []int     `json:"managed_center_ids,omitempty"`
	Role             string    `json:"role"`
	TokenType        TokenType `json:"token_type"`
}
