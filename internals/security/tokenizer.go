package security

import (
	"taskalive/config"
	"taskalive/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService validates access tokens minted by the external auth
// service. This service never issues tokens; it only needs to recognise
// them to scope dashboard requests to an account.
type TokenService struct {
	secret string
}

func NewTokenService(authCfg *config.AuthConfig) *TokenService {
	return &TokenService{
		secret: authCfg.Secret,
	}
}

func (ts *TokenService) ValidateAccessToken(accessToken string) (*RequestClaims, error) {
	const op string = "service.token.validate_access_token"

	claims := &RequestClaims{}

	token, err := jwt.ParseWithClaims(
		accessToken,
		claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(ts.secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)

	if err != nil || !token.Valid {
		return nil, &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "invalid token",
		}
	}

	return claims, nil
}
