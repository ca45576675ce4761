package middle

import (
	"crypto/subtle"
	"net/http"

	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"
)

// CronAuth guards operational endpoints hit by the external scheduler.
// The shared static secret is compared in constant time.
func CronAuth(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "", apperror.Unauthorised, err.Error())
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				utils.WriteError(w, http.StatusUnauthorized, "", apperror.Unauthorised, "invalid cron secret")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
