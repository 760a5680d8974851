package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/nore-menu/api/internal/database"
)

const staffKey contextKey = "staff"

// StaffGetter resolves a staff member by ID. Satisfied by
// *database.Queries.
type StaffGetter interface {
	GetStaffByID(ctx context.Context, id uuid.UUID) (database.Staff, error)
}

// RequireStaff resolves the X-Staff-Id header into a staff record. The
// POS frontend keeps one owner JWT per device and identifies the
// person at the counter with this header, so mutations can be
// attributed in the activity log.
func RequireStaff(store StaffGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("X-Staff-Id")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing X-Staff-Id header"})
				return
			}

			staffID, err := uuid.Parse(header)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid X-Staff-Id header"})
				return
			}

			staff, err := store.GetStaffByID(r.Context(), staffID)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown staff member"})
				return
			}

			ctx := context.WithValue(r.Context(), staffKey, &staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func StaffFromContext(ctx context.Context) *database.Staff {
	staff, _ := ctx.Value(staffKey).(*database.Staff)
	return staff
}
