package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/prepdeck/prepdeck/pkg/apperr"
	"github.com/prepdeck/prepdeck/pkg/models"
	"github.com/prepdeck/prepdeck/pkg/repository"
)

type AuthHandler struct {
	users         repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
	validate      *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{
		users:         ur,
		jwtSecret:     jwtSecret,
		tokenDuration: tokenDuration,
		validate:      validator.New(),
	}
}

type signupRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Token           string `json:"token"`
}

func (h *AuthHandler) signToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.BadRequest("Missing or invalid fields"))
		return
	}

	ctx := r.Context()

	existing, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		writeError(w, apperr.Internal("Error creating user", err))
		return
	}
	if existing != nil {
		writeError(w, apperr.BadRequest("User already exists"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, apperr.Internal("Error hashing password", err))
		return
	}

	user := models.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    string(hash),
		ProfileImageURL: req.ProfileImageURL,
	}
	userID, err := h.users.CreateUser(ctx, &user)
	if err != nil {
		writeError(w, apperr.Internal("Error creating user", err))
		return
	}

	tokenStr, err := h.signToken(userID)
	if err != nil {
		writeError(w, apperr.Internal("Error signing token", err))
		return
	}

	writeJSON(w, authResponse{
		ID:              userID,
		Username:        req.Username,
		Email:           req.Email,
		ProfileImageURL: req.ProfileImageURL,
		Token:           tokenStr,
	}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.BadRequest("Invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.BadRequest("Missing or invalid fields"))
		return
	}

	ctx := r.Context()

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil || user == nil {
		writeError(w, apperr.BadRequest("Invalid email or password"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, apperr.BadRequest("Invalid email or password"))
		return
	}

	tokenStr, err := h.signToken(user.ID)
	if err != nil {
		writeError(w, apperr.Internal("Error signing token", err))
		return
	}

	writeJSON(w, authResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
		Token:           tokenStr,
	}, http.StatusOK)
}

// Profile returns the caller's user record. The password hash never
// serializes (json:"-" on the model).
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Internal("get user", err))
		return
	}
	if user == nil {
		writeError(w, apperr.NotFound("User"))
		return
	}

	writeJSON(w, user, http.StatusOK)
}
