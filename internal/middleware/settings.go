package middleware

import (
	"net/http"

	"github.com/yanizio/reviewhook/internal/settings"
)

// Settings installs the process-wide settings as this request's scope.
// Handlers may replace it with an override via settings.WithContext; the
// replacement is visible only down their own call chain.
func Settings(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := settings.WithContext(r.Context(), settings.Global())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
