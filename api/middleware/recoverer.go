package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/voltedge/renewals-backend/api/responses"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// Recoverer converts panics into a 500 response instead of killing the
// connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{
						"panic": rec,
						"stack": string(debug.Stack()),
					})
					logg.Error(ctx, "panic recovered", fmt.Errorf("%v", rec))
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
