package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ukydev/fleet-ledger/internal/backup"
	"github.com/ukydev/fleet-ledger/internal/models"
)

const maxBackupSize = 32 << 20

// BackupHandler handles full-state export and import
type BackupHandler struct {
	service *backup.Service
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(service *backup.Service) *BackupHandler {
	return &BackupHandler{service: service}
}

// Export downloads the full state of the current profile as JSON
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := h.service.Export(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filename := fmt.Sprintf("fleet-backup-%s.json", snap.ExportDate.Format(models.DateLayout))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, snap)
}

// Import replaces the state of the current profile with an uploaded export
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupSize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	result, err := h.service.Import(r.Context(), claims.UserID, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
