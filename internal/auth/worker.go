package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/nyayalaya/casefile/internal/tenant"
)

// WorkerTokenHeader carries the pre-shared secret the external OCR engine
// authenticates with on callbacks.
const WorkerTokenHeader = "X-Worker-Token"

type WorkerAuth struct {
	token string
}

func NewWorkerAuth(token string) *WorkerAuth {
	return &WorkerAuth{token: token}
}

// Authenticate resolves the worker credential. A request without the header
// falls through to the next middleware (user auth); a request with a wrong
// token is rejected outright rather than downgraded to a user attempt.
func (m *WorkerAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(WorkerTokenHeader)
		if presented == "" {
			next.ServeHTTP(w, r)
			return
		}

		if m.token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(m.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid worker token")
			return
		}

		ctx := tenant.WithCaller(r.Context(), tenant.WorkerCaller())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
