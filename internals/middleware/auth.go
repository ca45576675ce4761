package middle

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"taskalive/internals/security"
	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"
)

type accountCtxKeyType struct{}

var accountCtxKey = accountCtxKeyType{}

// AuthMiddleware validates bearer access tokens and stores the account
// claims in the request context.
type AuthMiddleware struct {
	tokenSvc *security.TokenService
}

func NewAuthMiddleware(tokenSvc *security.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: tokenSvc,
	}
}

func (a *AuthMiddleware) Handle(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {

		token, err := extractBearerToken(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "", apperror.Unauthorised, err.Error())
			return
		}

		claims, err := a.tokenSvc.ValidateAccessToken(token)
		if err != nil {
			utils.FromAppError(w, "", err)
			return
		}

		if claims.AccountID == "" {
			utils.WriteError(w, http.StatusUnauthorized, "", apperror.Unauthorised, "account is unauthorised")
			return
		}

		ctx := context.WithValue(r.Context(), accountCtxKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")

	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header")
	}

	return parts[1], nil
}

func AccountFromContext(ctx context.Context) (*security.RequestClaims, bool) {
	claims, ok := ctx.Value(accountCtxKey).(*security.RequestClaims)
	return claims, ok
}
