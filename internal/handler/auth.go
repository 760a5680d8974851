package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nore-menu/api/internal/auth"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetRestaurantByOwnerEmail(ctx context.Context, ownerEmail string) (database.Restaurant, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	GetStaffByCredentials(ctx context.Context, arg database.GetStaffByCredentialsParams) (database.Staff, error)
}

// AuthHandler handles login and token refresh.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/staff-login", h.StaffLogin)
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type staffLoginRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

type loginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	Restaurant   restaurantResponse `json:"restaurant"`
}

type restaurantResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	WhatsappNumber *string   `json:"whatsapp_number"`
	PayBefore      bool      `json:"pay_before"`
}

type staffLoginResponse struct {
	AccessToken string        `json:"access_token"`
	Staff       staffResponse `json:"staff"`
}

// --- Handlers ---

// Login handles POST /auth/login. Owner accounts are per-restaurant:
// the restaurant row carries the owner credentials, so the subject of
// an owner token is the restaurant itself.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	restaurant, err := h.store.GetRestaurantByOwnerEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: get restaurant by owner email: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(restaurant.OwnerPasswordHash), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	h.writeOwnerTokens(w, restaurant)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
			return
		}
		log.Printf("ERROR: get restaurant for refresh: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.writeOwnerTokens(w, restaurant)
}

// StaffLogin handles POST /auth/staff-login. Terminal accounts use a
// short shared-device flow: the credentials check is a plain equality
// match against the staff row, and the response carries the capability
// flags the terminal needs to shape its UI.
func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	staff, err := h.store.GetStaffByCredentials(r.Context(), database.GetStaffByCredentialsParams{
		RestaurantID: restaurantID,
		Username:     req.Username,
		Password:     req.Password,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		log.Printf("ERROR: staff login: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, staff.ID, staff.RestaurantID, enum.RoleStaff)
	if err != nil {
		log.Printf("ERROR: generate staff token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, staffLoginResponse{
		AccessToken: token,
		Staff:       dbStaffToResponse(staff),
	})
}

// --- Helpers ---

func (h *AuthHandler) writeOwnerTokens(w http.ResponseWriter, restaurant database.Restaurant) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, restaurant.ID, restaurant.ID, enum.RoleOwner)
	if err != nil {
		log.Printf("ERROR: generate access token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, restaurant.ID)
	if err != nil {
		log.Printf("ERROR: generate refresh token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Restaurant: restaurantResponse{
			ID:             restaurant.ID,
			Name:           restaurant.Name,
			Slug:           restaurant.Slug,
			WhatsappNumber: textPtr(restaurant.WhatsappNumber),
			PayBefore:      restaurant.PayBefore,
		},
	})
}
