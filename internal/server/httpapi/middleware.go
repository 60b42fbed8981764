package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"github.com/hlf20010508/transfery/internal/common"
)

type contextKey int

const (
	authorizedKey contextKey = iota
	fingerprintKey
)

// authorization is the JSON carried in the Authorization header: the device
// fingerprint plus the certificate previously issued for it.
type authorization struct {
	Fingerprint string `json:"fingerprint"`
	Certificate string `json:"certificate"`
}

// withAuthorization resolves the Authorization header on every request and
// stores the result in the context. A missing or invalid certificate does
// not reject the request here; handlers that serve private content consult
// isAuthorized and degrade or refuse on their own.
func (s *Server) withAuthorization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get(common.AuthorizationHeaderName)
		if header != "" {
			var auth authorization
			if err := json.Unmarshal([]byte(header), &auth); err == nil && auth.Certificate != "" {
				if s.certificates.Verify(ctx, auth.Certificate, auth.Fingerprint) {
					ctx = context.WithValue(ctx, authorizedKey, true)
					ctx = context.WithValue(ctx, fingerprintKey, auth.Fingerprint)
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuthorization rejects requests whose certificate did not verify.
func (s *Server) requireAuthorization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthorized(r.Context()) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, failure("certificate invalid"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAuthorized(ctx context.Context) bool {
	v, _ := ctx.Value(authorizedKey).(bool)
	return v
}

func requestFingerprint(ctx context.Context) string {
	v, _ := ctx.Value(fingerprintKey).(string)
	return v
}
