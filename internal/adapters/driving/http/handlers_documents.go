package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// DocumentListResponse wraps a user's documents
// @Description List of the caller's documents, newest first
type DocumentListResponse struct {
	Documents []*domain.DocumentRecord `json:"documents"`
	Total     int                      `json:"total" example:"3"`
}

// handleUpload godoc
// @Summary      Upload a document
// @Description  Stores the file and indexes its text. PDF, plain text and markdown are supported.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "Document to upload"
// @Param        workspace  formData  string  false  "Workspace tag"
// @Success      201  {object}  driving.UploadResponse
// @Failure      400  {object}  ErrorResponse  "Missing file or unsupported format"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      413  {object}  ErrorResponse  "File too large"
// @Failure      503  {object}  ErrorResponse  "Embedding service or vector store unavailable"
// @Router       /documents [post]
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	resp, err := s.documents.Upload(r.Context(), driving.UploadRequest{
		UserID:    authCtx.UserID,
		FileName:  header.Filename,
		Data:      data,
		Workspace: r.FormValue("workspace"),
	})
	if err != nil {
		writeDomainError(w, err, "upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// handleIngestExternal godoc
// @Summary      Ingest a document from a URL
// @Description  Downloads a publicly reachable document and indexes it
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.ExternalRequest  true  "Document URL"
// @Success      201      {object}  driving.UploadResponse
// @Failure      400      {object}  ErrorResponse  "Missing url or unsupported format"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "Upstream unavailable"
// @Router       /documents/external [post]
func (s *Server) handleIngestExternal(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.ExternalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = authCtx.UserID

	resp, err := s.documents.IngestExternal(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "ingestion failed")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// handleListDocuments godoc
// @Summary      List documents
// @Description  Lists the caller's documents, newest first
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DocumentListResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := s.documents.List(r.Context(), authCtx.UserID)
	if err != nil {
		writeDomainError(w, err, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []*domain.DocumentRecord{}
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// handleDocumentContent godoc
// @Summary      Download document content
// @Description  Returns the raw bytes of one of the caller's documents
// @Tags         Documents
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    binary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id}/content [get]
func (s *Server) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id required")
		return
	}

	data, doc, err := s.documents.Content(r.Context(), authCtx.UserID, id)
	if err != nil {
		writeDomainError(w, err, "failed to read document")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(doc.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.FileName}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
