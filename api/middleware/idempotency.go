package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/configurator-backend/api/responses"
	"github.com/angelmondragon/configurator-backend/api/validators"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/configurator-backend/pkg/redis"
)

const (
	idempotencyHeader       = "Idempotency-Key"
	idempotencyReplayHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLen    = 255

	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

// storedResponse is the replayable outcome of a guarded request.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency guards customer creation, draft saves and checkout. A repeated
// Idempotency-Key with the same body replays the first response; a different
// body is IDEMPOTENCY_KEY_REUSED. 5xx outcomes are not stored so clients can retry.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := routeTTL(r.Method, routePattern(r))
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			idemKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			switch {
			case idemKey == "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case len(idemKey) > maxIdempotencyKeyLen:
				responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "Idempotency-Key longer than %d characters", maxIdempotencyKeyLen))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", tooLarge.Limit))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintRequest(r, body)
			key := store.IdempotencyKey(idempotencyScope(r), idemKey)

			raw, err := store.Get(ctx, key)
			switch {
			case err != nil && !errors.Is(err, pkgredis.Nil):
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			case raw != "":
				var prior storedResponse
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replay(w, prior)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusOrOK()
			if status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			})
			if err == nil {
				_, err = store.SetNX(ctx, key, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.WarnErr(logg.WithField(ctx, "idempotency_key", idemKey), "idempotency.persist_failed", err)
			}
		})
	}
}

// idempotencyScope keeps keys from different clients and endpoints apart.
func idempotencyScope(r *http.Request) string {
	return ClientIDFromContext(r.Context()) + "|" + r.Method + "|" + r.URL.Path
}

func fingerprintRequest(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + " " + r.URL.Path + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func replay(w http.ResponseWriter, prior storedResponse) {
	if prior.ContentType != "" {
		w.Header().Set("Content-Type", prior.ContentType)
	}
	w.Header().Set(idempotencyReplayHeader, "true")
	w.WriteHeader(prior.Status)
	_, _ = w.Write(prior.Body)
}

// routePattern prefers the matched chi pattern. Middleware mounted on a sub-router
// runs before routing completes and only sees a "/*" pattern, so the request path
// is used instead.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	if path := strings.TrimSuffix(r.URL.Path, "/"); path != "" {
		return path
	}
	return r.URL.Path
}

// routeTTL reports whether method and pattern are guarded and for how long a
// response is replayable. Checkout keeps its records longest.
func routeTTL(method, pattern string) (time.Duration, bool) {
	if method != http.MethodPost || pattern == "" {
		return 0, false
	}
	const configurations = "/api/v1/configurations/"
	switch {
	case pattern == "/api/v1/customers":
		return defaultIdempotencyTTL, true
	case strings.HasPrefix(pattern, configurations) && strings.HasSuffix(pattern, "/drafts"):
		return defaultIdempotencyTTL, true
	case strings.HasPrefix(pattern, configurations) && strings.HasSuffix(pattern, "/checkout"):
		return criticalIdempotencyTTL, true
	}
	return 0, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
