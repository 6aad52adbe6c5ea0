package fakeapi

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issueToken signs an HS256 access token for userID.
func (s *Server) issueToken(userID string) (string, error) {
	now := s.nowTime()
	claims := jwtlib.MapClaims{
		"sub":        userID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.tokenExpiry).Unix(),
		"jti":        uuid.New().String(),
		"token_type": "access",
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// parseToken verifies the signature and expiry and returns the subject.
func (s *Server) parseToken(raw string) (string, error) {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.nowTime),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid access token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("access token has no subject")
	}
	return sub, nil
}
