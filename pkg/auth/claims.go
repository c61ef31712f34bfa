// Package auth mints and verifies the HS256 access tokens carried by the auth cookie.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	IsSubscriber bool
	// JTI ties the token to a server-side session; a random id is generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID       uuid.UUID `json:"user_id"`
	IsSubscriber bool      `json:"is_subscriber"`
	jwt.RegisteredClaims
}

// Validate runs after the registered-claim checks during parsing.
func (c AccessTokenClaims) Validate() error {
	switch {
	case c.UserID == uuid.Nil:
		return errors.New("token has no user")
	case c.ID == "":
		return errors.New("token has no session id")
	case c.Subject != c.UserID.String():
		return errors.New("token subject does not match user")
	}
	return nil
}
