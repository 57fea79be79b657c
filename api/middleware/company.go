package middleware

import (
	"net/http"

	"github.com/fleetdesk/fleetdesk-backend/api/responses"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

// CompanyContext rejects requests whose token carries no company claim.
// Dispatchers and drivers only gain one after redeeming an invite.
func CompanyContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CompanyIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "company context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
