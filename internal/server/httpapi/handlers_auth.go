package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/hlf20010508/transfery/internal/common"
	"github.com/hlf20010508/transfery/internal/server/broadcast"
	"github.com/hlf20010508/transfery/internal/server/models"
)

type authRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint"`
	Browser     string `json:"browser"`
	RememberMe  bool   `json:"rememberMe"`
	Sid         string `json:"sid"`
}

type authResponse struct {
	response
	Certificate         string `json:"certificate,omitempty"`
	ExpirationTimestamp int64  `json:"expirationTimestamp,omitempty"`
}

// handleAuth exchanges the credential pair for a device certificate. On
// success the requesting socket joins the private room, and remembered
// devices are announced to the other authenticated devices.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("invalid body"))
		return
	}

	certificate, expiration, err := s.certificates.Issue(
		r.Context(), req.Username, req.Password, req.Fingerprint, req.Browser, req.RememberMe)
	if errors.Is(err, common.ErrorUnauthorized) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, failure("invalid credentials"))
		return
	}
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	if req.Sid != "" {
		s.hub.JoinRoom(req.Sid, broadcast.RoomPrivate)
	}
	if req.RememberMe {
		s.emitDeviceList(r)
	}

	render.JSON(w, r, authResponse{
		response:            success(),
		Certificate:         certificate,
		ExpirationTimestamp: expiration,
	})
}

// handleLogin reports whether the presented certificate is still valid, and
// rejoins the socket to the private room on reconnects.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r.Context()) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, failure("certificate invalid"))
		return
	}

	if sid := r.URL.Query().Get("sid"); sid != "" {
		s.hub.JoinRoom(sid, broadcast.RoomPrivate)
	}

	render.JSON(w, r, success())
}

type devicesResponse struct {
	response
	Devices []*models.Device `json:"devices"`
}

// handleDevices lists remembered devices, most recently used first.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	items, err := s.certificates.Devices(r.Context())
	if err != nil {
		s.renderInternalError(w, r, err)
		return
	}

	render.JSON(w, r, devicesResponse{response: success(), Devices: items})
}

// handleDeviceSignOut forgets a remembered device and announces the new
// device list to authenticated devices.
func (s *Server) handleDeviceSignOut(w http.ResponseWriter, r *http.Request) {
	fingerprint := r.URL.Query().Get("fingerprint")
	if fingerprint == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, failure("missing fingerprint"))
		return
	}

	if err := s.certificates.SignOutDevice(r.Context(), fingerprint); err != nil {
		s.renderInternalError(w, r, err)
		return
	}
	s.log.Info(r.Context(), "device signed out",
		"fingerprint", fingerprint, "by", requestFingerprint(r.Context()))

	s.emitDeviceList(r)

	render.JSON(w, r, success())
}

// emitDeviceList pushes the current device inventory to the private room.
// Failures are logged; push delivery is best effort.
func (s *Server) emitDeviceList(r *http.Request) {
	items, err := s.certificates.Devices(r.Context())
	if err != nil {
		s.log.Warn(r.Context(), "failed to load devices for push", "error", err)
		return
	}
	s.hub.Emit(broadcast.EventDevice, items, broadcast.RoomPrivate, "")
}

// handleHealthz is the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, success())
}
