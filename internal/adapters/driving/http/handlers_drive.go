package http

import (
	"net/http"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// handleDriveConnect godoc
// @Summary      Start drive authorization
// @Description  Returns the provider URL the browser must visit to grant read-only drive access
// @Tags         Drive
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.ConnectResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /drive/connect [get]
func (s *Server) handleDriveConnect(w http.ResponseWriter, r *http.Request) {
	if GetAuthContext(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !s.driveConfigured(w) {
		return
	}

	resp, err := s.driveAuth.Connect(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to start authorization")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDriveCallback godoc
// @Summary      Drive authorization callback
// @Description  Receives the provider redirect, exchanges the code and redirects to the frontend with a temporary key
// @Tags         Drive
// @Param        state  query  string  true   "State issued by /drive/connect"
// @Param        code   query  string  false  "Authorization code"
// @Param        error  query  string  false  "Provider error"
// @Success      302
// @Failure      400  {object}  ErrorResponse  "Unknown or expired state"
// @Router       /drive/callback [get]
func (s *Server) handleDriveCallback(w http.ResponseWriter, r *http.Request) {
	if !s.driveConfigured(w) {
		return
	}
	q := r.URL.Query()
	resp, err := s.driveAuth.Callback(r.Context(), driving.CallbackRequest{
		Code:  q.Get("code"),
		State: q.Get("state"),
		Error: q.Get("error"),
	})
	if err != nil {
		writeDomainError(w, err, "authorization failed")
		return
	}

	http.Redirect(w, r, resp.RedirectURL, http.StatusFound)
}

// handleDriveClaim godoc
// @Summary      Claim a drive connection
// @Description  Binds the credential parked under tempKey to the caller and starts a background sync
// @Tags         Drive
// @Produce      json
// @Security     BearerAuth
// @Param        tempKey  query     string  true  "Temporary key from the callback redirect"
// @Success      200      {object}  driving.ClaimResponse
// @Failure      400      {object}  ErrorResponse  "Missing tempKey"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Unknown or already claimed key"
// @Router       /drive/claim [post]
func (s *Server) handleDriveClaim(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !s.driveConfigured(w) {
		return
	}

	tempKey := r.URL.Query().Get("tempKey")
	if tempKey == "" {
		writeError(w, http.StatusBadRequest, "tempKey is required")
		return
	}

	resp, err := s.driveAuth.Claim(r.Context(), tempKey, authCtx.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to claim drive connection")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDriveStatus godoc
// @Summary      Drive connection status
// @Tags         Drive
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.DriveStatus
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /drive/status [get]
func (s *Server) handleDriveStatus(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !s.driveConfigured(w) {
		return
	}

	resp, err := s.driveAuth.Status(r.Context(), authCtx.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to read drive status")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTriggerSync godoc
// @Summary      Sync drive
// @Description  Starts a background sync of every PDF in the caller's drive
// @Tags         Drive
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  domain.SyncReport
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "No drive connected"
// @Router       /drive/sync [post]
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !s.driveConfigured(w) {
		return
	}

	status, err := s.driveAuth.Status(r.Context(), authCtx.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to read drive status")
		return
	}
	if !status.Connected {
		writeError(w, http.StatusNotFound, "no drive connected")
		return
	}

	handle := s.driveSync.SyncAll(r.Context(), authCtx.UserID)
	writeJSON(w, http.StatusAccepted, handle.Report())
}

// handleGetSync godoc
// @Summary      Latest drive sync
// @Description  Returns the report of the caller's most recent sync
// @Tags         Drive
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SyncReport
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "No sync has run"
// @Router       /drive/sync [get]
func (s *Server) handleGetSync(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !s.driveConfigured(w) {
		return
	}

	report, ok := s.driveSync.Latest(authCtx.UserID)
	if !ok {
		writeDomainError(w, domain.ErrNotFound, "")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// driveConfigured writes 503 when the server runs without drive credentials
func (s *Server) driveConfigured(w http.ResponseWriter) bool {
	if s.driveAuth == nil || s.driveSync == nil {
		writeError(w, http.StatusServiceUnavailable, "drive integration is not configured")
		return false
	}
	return true
}
