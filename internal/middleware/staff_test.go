package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/middleware"
)

type mockStaffGetter struct {
	getStaffByIDFn func(ctx context.Context, id uuid.UUID) (database.Staff, error)
}

func (m *mockStaffGetter) GetStaffByID(ctx context.Context, id uuid.UUID) (database.Staff, error) {
	return m.getStaffByIDFn(ctx, id)
}

func TestRequireStaff_ValidHeader(t *testing.T) {
	staffID := uuid.New()
	store := &mockStaffGetter{
		getStaffByIDFn: func(ctx context.Context, id uuid.UUID) (database.Staff, error) {
			if id != staffID {
				t.Errorf("staff ID: got %v, want %v", id, staffID)
			}
			return database.Staff{ID: staffID, DisplayName: "Siti"}, nil
		},
	}

	handler := middleware.RequireStaff(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staff := middleware.StaffFromContext(r.Context())
		if staff == nil {
			t.Fatal("expected staff in context")
		}
		if staff.DisplayName != "Siti" {
			t.Errorf("staff name: got %v, want Siti", staff.DisplayName)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("PATCH", "/", nil)
	req.Header.Set("X-Staff-Id", staffID.String())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRequireStaff_MissingHeader(t *testing.T) {
	store := &mockStaffGetter{
		getStaffByIDFn: func(ctx context.Context, id uuid.UUID) (database.Staff, error) {
			t.Fatal("store should not be called")
			return database.Staff{}, nil
		},
	}

	handler := middleware.RequireStaff(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("PATCH", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireStaff_UnknownStaff(t *testing.T) {
	store := &mockStaffGetter{
		getStaffByIDFn: func(ctx context.Context, id uuid.UUID) (database.Staff, error) {
			return database.Staff{}, errors.New("no rows in result set")
		},
	}

	handler := middleware.RequireStaff(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("PATCH", "/", nil)
	req.Header.Set("X-Staff-Id", uuid.New().String())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
