package middleware

import (
	"net/http"

	"github.com/angelmondragon/configurator-backend/api/validators"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

const (
	clientIDHeader   = "X-Client-Id"
	maxClientIDBytes = 128
)

// ClientID stores the X-Client-Id header on the request context. The id keys
// remembered preferences and idempotency scopes; it is not an identity.
func ClientID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := validators.SanitizeString(r.Header.Get(clientIDHeader), maxClientIDBytes)
			if clientID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithClientID(r.Context(), clientID)
			if logg != nil {
				ctx = logg.WithClientID(ctx, clientID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
