package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/domain/user"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	userService *user.Service
	jwtService  *auth.JWTService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(userService *user.Service, jwtService *auth.JWTService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		jwtService:  jwtService,
		validate:    newValidator(),
		logger:      logger.Named("auth"),
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID    int64  `json:"id"`
	Phone string `json:"phone"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	u, err := h.userService.Register(r.Context(), req.Phone, req.Password, req.ConfirmPassword)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, u)
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, h.validate, &req); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Phone, req.Password)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	h.respondWithToken(w, http.StatusOK, u)
}

func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, status int, u *domain.User) {
	token, expiresAt, err := h.jwtService.GenerateToken(u.ID, u.Phone)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Int64("user_id", u.ID), zap.Error(err))
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      UserResponse{ID: u.ID, Phone: u.Phone},
	})
}
