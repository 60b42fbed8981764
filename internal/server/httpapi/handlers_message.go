package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/hlf20010508/transfery/internal/server/broadcast"
	"github.com/hlf20010508/transfery/internal/server/models"
)

type pageResponse struct {
	response
	Messages []*models.Message `json:"messages"`
}

// handlePage serves one window of the feed. The size query parameter is the
// number of items the client already displays; the reply continues from
// there.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || offset < 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid size"))
		return
	}

	items, err := s.messages.Page(r.Context(), offset, isAuthorized(r.Context()))
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	render.JSON(w, r, pageResponse{response: success(), Messages: items})
}

// handleSync returns every message newer than the client's cursor.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	lastID, err := strconv.ParseInt(r.URL.Query().Get("lastId"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid lastId"))
		return
	}

	items, err := s.messages.SyncAfter(r.Context(), lastID, isAuthorized(r.Context()))
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	render.JSON(w, r, pageResponse{response: success(), Messages: items})
}

type newItemRequest struct {
	Content   string             `json:"content"`
	Timestamp int64              `json:"timestamp"`
	IsPrivate bool               `json:"isPrivate"`
	Type      models.MessageType `json:"type"`
	FileName  *string            `json:"fileName,omitempty"`
	Sid       string             `json:"sid"`
}

type newItemResponse struct {
	response
	ID       int64   `json:"id"`
	FileName *string `json:"fileName,omitempty"`
}

// handleNewItem appends a message to the feed and pushes it to the matching
// room, excluding the sender's own connection. Private items require a
// verified certificate.
func (s *Server) handleNewItem(w http.ResponseWriter, r *http.Request) {
	var req newItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid body"))
		return
	}

	if req.IsPrivate && !isAuthorized(r.Context()) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, failure("certificate invalid"))
		return
	}

	item := &models.Message{
		Content:   req.Content,
		Timestamp: req.Timestamp,
		IsPrivate: req.IsPrivate,
		Type:      req.Type,
		FileName:  req.FileName,
	}
	if req.Type == models.MessageTypeFile {
		incomplete := false
		item.IsComplete = &incomplete
	}

	id, err := s.messages.Insert(r.Context(), item)
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}
	item.ID = id

	room := broadcast.RoomPublic
	if item.IsPrivate {
		room = broadcast.RoomPrivate
	}
	s.hub.Emit(broadcast.EventNewItem, item, room, req.Sid)

	render.JSON(w, r, newItemResponse{response: success(), ID: id, FileName: item.FileName})
}

type removeItemRequest struct {
	ID        int64              `json:"id"`
	Type      models.MessageType `json:"type"`
	IsPrivate bool               `json:"isPrivate"`
	FileName  *string            `json:"fileName,omitempty"`
	Sid       string             `json:"sid"`
}

// handleRemoveItem deletes one message and, for file messages, its stored
// object. A failed object delete is logged but does not undo the row
// delete.
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid body"))
		return
	}

	if err := s.messages.Remove(r.Context(), req.ID); err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	if req.Type == models.MessageTypeFile && req.FileName != nil {
		if err := s.store.RemoveObject(r.Context(), *req.FileName); err != nil {
			s.log.Warn(r.Context(), "failed to remove object", "fileName", *req.FileName, "error", err)
		}
	}

	room := broadcast.RoomPublic
	if req.IsPrivate {
		room = broadcast.RoomPrivate
	}
	s.hub.Emit(broadcast.EventRemoveItem, map[string]int64{"id": req.ID}, room, req.Sid)

	render.JSON(w, r, success())
}

// handleRemoveAll wipes the feed and the object store, then pushes the wipe
// to every client including ones that never saw the private items.
func (s *Server) handleRemoveAll(w http.ResponseWriter, r *http.Request) {
	names, err := s.messages.RemoveAll(r.Context())
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	if err := s.store.RemoveAllObjects(r.Context()); err != nil {
		s.log.Warn(r.Context(), "failed to remove all objects", "fileMessages", len(names), "error", err)
	}

	sid := r.URL.Query().Get("sid")
	s.hub.Emit(broadcast.EventRemoveAll, nil, broadcast.RoomPublic, sid)

	render.JSON(w, r, success())
}

func (s *Server) renderInternalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, failure("internal error"))
}
