// Package middleware holds small, composable HTTP wrappers for the
// webhook router.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

// deliveryHeaders carry provider-assigned delivery IDs, checked in order.
var deliveryHeaders = []string{
	"X-GitHub-Delivery",
	"X-Gitlab-Event-UUID",
	HeaderRequestID,
}

type requestIDKey struct{}

// RequestID tags each request with the provider's delivery ID when one is
// present, or a fresh UUID otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		for _, h := range deliveryHeaders {
			if id = strings.TrimSpace(r.Header.Get(h)); id != "" {
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
