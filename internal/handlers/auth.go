package handlers

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/auth"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errUsernameTaken = errors.New("username already exists")

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	authService *auth.Service
	profiles    db.ProfileCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, profiles db.ProfileCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		profiles:    profiles,
	}
}

// Login handles profile login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := decode(r, &loginReq); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.profiles.FindProfileByUsername(r.Context(), loginReq.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Warn("Profile lookup failed during login")
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, profile.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	response, err := h.issueTokens(profile)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Last login is informational only.
	if err := h.profiles.UpdateLastLogin(r.Context(), profile.ID.Hex()); err != nil {
		log.WithError(err).WithField("user_id", profile.ID.Hex()).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, response)
}

// Register creates a profile together with its truck
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := decode(r, &registerReq); err != nil {
		writeError(w, r, err)
		return
	}

	_, err := h.profiles.FindProfileByUsername(r.Context(), registerReq.Username)
	switch {
	case err == nil:
		writeError(w, r, errUsernameTaken)
		return
	case !errors.Is(err, db.ErrNotFound):
		writeError(w, r, err)
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := time.Now()
	profile := models.Profile{
		ID:           primitive.NewObjectID(),
		Username:     registerReq.Username,
		PasswordHash: passwordHash,
		CompanyName:  registerReq.CompanyName,
		DriverName:   registerReq.DriverName,
		Truck: models.Truck{
			Plate:           registerReq.Plate,
			InitialOdometer: registerReq.InitialOdometer,
			CurrentOdometer: registerReq.InitialOdometer,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.profiles.InsertProfile(r.Context(), profile); err != nil {
		writeError(w, r, err)
		return
	}

	response, err := h.issueTokens(&profile)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.WithFields(log.Fields{"user_id": profile.ID.Hex(), "plate": profile.Truck.Plate}).Info("Profile registered")
	writeJSON(w, http.StatusCreated, response)
}

func (h *AuthHandler) issueTokens(profile *models.Profile) (models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(profile)
	if err != nil {
		return models.LoginResponse{}, err
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		Profile:      *profile,
	}, nil
}

// GetProfile returns the current profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.profiles.FindProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile updates the driver and truck data of the current profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var updateReq models.ProfileUpdateRequest
	if err := decode(r, &updateReq); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.profiles.FindProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updateReq.Apply(profile)
	profile.UpdatedAt = time.Now()

	if err := h.profiles.UpdateProfile(r.Context(), claims.UserID, *profile); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword changes the password of the current profile
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var passwordReq changePasswordRequest
	if err := decode(r, &passwordReq); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.profiles.FindProfileByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.authService.CheckPassword(passwordReq.CurrentPassword, profile.PasswordHash) {
		http.Error(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	newPasswordHash, err := h.authService.HashPassword(passwordReq.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile.PasswordHash = newPasswordHash
	profile.UpdatedAt = time.Now()
	if err := h.profiles.UpdateProfile(r.Context(), claims.UserID, *profile); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
