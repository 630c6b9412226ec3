package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	unitsdomain "opsboard/internal/domain/units"
	"opsboard/pkg/logger"
)

// MembershipChecker is satisfied by units.Service.
type MembershipChecker interface {
	RequireMember(ctx context.Context, userID, unitID string) (*unitsdomain.UnitMember, error)
}

// RequireUnitMember guards routes under /units/{unit_id}. The caller must be
// a member of the unit; the membership is stored in the request context.
func RequireUnitMember(units MembershipChecker, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}

			unitID := chi.URLParam(r, "unit_id")
			if _, err := uuid.Parse(unitID); err != nil {
				writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
				return
			}
			reqLog := logger.FromContext(r.Context(), log)
			member, err := units.RequireMember(r.Context(), user.ID, unitID)
			if err != nil {
				if errors.Is(err, unitsdomain.ErrNotMember) {
					reqLog.BusinessError("units.require_member: access denied", err, "user_id", user.ID, "unit_id", unitID)
					writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
					return
				}
				reqLog.InternalError("units.require_member: lookup failed", err, "user_id", user.ID, "unit_id", unitID)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), unitKey, *member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UnitFromContext returns the membership stored by RequireUnitMember.
func UnitFromContext(ctx context.Context) (unitsdomain.UnitMember, bool) {
	member, ok := ctx.Value(unitKey).(unitsdomain.UnitMember)
	return member, ok && member.UnitID != ""
}
