package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/hlf20010508/transfery/internal/server/broadcast"
	"github.com/hlf20010508/transfery/internal/server/models"
)

// uploadPart chunks arrive as multipart form data; cap the in-memory
// buffer, the rest spills to disk.
const uploadPartMaxMemory = 16 << 20

type fetchUploadIDRequest struct {
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type fetchUploadIDResponse struct {
	response
	UploadID string `json:"uploadId"`
	FileName string `json:"fileName"`
}

// handleFetchUploadID opens a multipart upload session for a file with the
// given display name. The returned fileName is the derived object key the
// client must echo on every part.
func (s *Server) handleFetchUploadID(w http.ResponseWriter, r *http.Request) {
	var req fetchUploadIDRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid body"))
		return
	}

	uploadID, fileName, err := s.uploads.Create(r.Context(), req.Content, req.Timestamp)
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	render.JSON(w, r, fetchUploadIDResponse{response: success(), UploadID: uploadID, FileName: fileName})
}

type uploadPartResponse struct {
	response
	ETag string `json:"etag"`
}

// handleUploadPart accepts one chunk as multipart form data (fields:
// fileName, uploadId, partNumber, filePart) and returns the etag assigned
// by the store.
func (s *Server) handleUploadPart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadPartMaxMemory); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid multipart form"))
		return
	}

	fileName := r.FormValue("fileName")
	uploadID := r.FormValue("uploadId")
	partNumber, err := strconv.ParseInt(r.FormValue("partNumber"), 10, 32)
	if err != nil || partNumber < 1 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid partNumber"))
		return
	}

	part, _, err := r.FormFile("filePart")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("missing filePart"))
		return
	}
	defer part.Close()

	etag, err := s.uploads.UploadPart(r.Context(), fileName, uploadID, int32(partNumber), part)
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	render.JSON(w, r, uploadPartResponse{response: success(), ETag: etag})
}

type completeUploadRequest struct {
	ID        int64         `json:"id"`
	FileName  string        `json:"fileName"`
	UploadID  string        `json:"uploadId"`
	IsPrivate bool          `json:"isPrivate"`
	Parts     []models.Part `json:"parts"`
	Sid       string        `json:"sid"`
}

// handleCompleteUpload finalizes a multipart session, marks the associated
// file message downloadable and pushes the completion to other devices.
func (s *Server) handleCompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req completeUploadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid body"))
		return
	}

	if err := s.uploads.Complete(r.Context(), req.FileName, req.UploadID, req.Parts, req.ID); err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	room := broadcast.RoomPublic
	if req.IsPrivate {
		room = broadcast.RoomPrivate
	}
	s.hub.Emit(broadcast.EventCompleteItem, map[string]int64{"id": req.ID}, room, req.Sid)

	render.JSON(w, r, success())
}

type downloadURLResponse struct {
	response
	URL string `json:"url"`
}

// handleDownloadURL returns a time-limited presigned download URL for a
// stored object.
func (s *Server) handleDownloadURL(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("missing fileName"))
		return
	}

	url, err := s.store.PresignGetURL(r.Context(), fileName)
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	render.JSON(w, r, downloadURLResponse{response: success(), URL: url})
}
