package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-ledger/internal/backup"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/maintenance"
	"github.com/ukydev/fleet-ledger/internal/middleware"
	"github.com/ukydev/fleet-ledger/internal/models"
	"github.com/ukydev/fleet-ledger/internal/tires"
	"github.com/ukydev/fleet-ledger/internal/trips"
	"github.com/ukydev/fleet-ledger/internal/validation"
)

var (
	errInvalidJSON = errors.New("invalid JSON")
	errNoClaims    = errors.New("user context not found")
)

var badRequest = []error{
	errInvalidJSON,
	tires.ErrInvalidPosition,
	tires.ErrInvalidCondition,
	tires.ErrMissingIdentity,
	tires.ErrMissingDescription,
	tires.ErrOdometerRegression,
	trips.ErrInvalidEndOdometer,
	trips.ErrMissingStation,
	trips.ErrNonPositiveCost,
	maintenance.ErrUnknownItem,
	backup.ErrMalformedBackup,
}

var notFound = []error{
	db.ErrNotFound,
	tires.ErrNotFound,
	tires.ErrEventNotFound,
	trips.ErrFuelNotFound,
	errEntryNotFound,
}

var conflict = []error{
	trips.ErrActiveTripExists,
	trips.ErrTripCompleted,
	tires.ErrSegmentOpen,
	errUsernameTaken,
	db.ErrTripOwnedElsewhere,
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr), matches(err, badRequest):
		return http.StatusBadRequest
	case errors.Is(err, errNoClaims):
		return http.StatusUnauthorized
	case matches(err, notFound):
		return http.StatusNotFound
	case matches(err, conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errInvalidJSON
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errInvalidJSON
	}
	return validation.Struct(v)
}

func claimsFrom(r *http.Request) (*models.Claims, error) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return nil, errNoClaims
	}
	return claims, nil
}
