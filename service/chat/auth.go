package chat

import (
	security "conecta/tools/security"
)

// Authenticator verifies a bearer credential and extracts the user
// identity. A connection that fails verification is refused before
// entering event dispatch.
type Authenticator interface {
	Verify(token string) (userID string, err error)
}

// JWTAuthenticator is the production authenticator.
type JWTAuthenticator struct {
	Opts security.Options
}

func (a JWTAuthenticator) Verify(token string) (string, error) {
	claims, err := security.Verify(a.Opts, token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
