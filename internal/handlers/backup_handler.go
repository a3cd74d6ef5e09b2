package handlers

import (
	"net/http"

	"wordtrail/internal/service"
)

// BackupHandler exports and imports the local store as JSON
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Export streams a full backup of the local store
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="wordtrail-backup.json"`)

	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Export failed", "Backup export failed", err)
		return
	}
}

// Import restores a backup into the local store
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Import failed: invalid backup data", "Backup import failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
