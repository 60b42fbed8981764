// Package httpapi exposes the transfery server over HTTP: the feed queries
// and mutations, the multipart upload endpoints, authentication, device
// management and the websocket push channel.
package httpapi

import (
	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"

	"github.com/hlf20010508/transfery/internal/logging"
	"github.com/hlf20010508/transfery/internal/server/broadcast"
	"github.com/hlf20010508/transfery/internal/server/services"
	"github.com/hlf20010508/transfery/internal/server/storage"
)

// Server bundles the application services behind the HTTP surface.
type Server struct {
	messages     *services.MessageService
	uploads      *services.UploadService
	certificates *services.CertificateService
	store        storage.ObjectStore
	hub          *broadcast.Hub
	log          logging.Logger
}

func NewServer(
	messages *services.MessageService,
	uploads *services.UploadService,
	certificates *services.CertificateService,
	store storage.ObjectStore,
	hub *broadcast.Hub,
	log logging.Logger,
) *Server {
	return &Server{
		messages:     messages,
		uploads:      uploads,
		certificates: certificates,
		store:        store,
		hub:          hub,
		log:          log,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.withAuthorization)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/ws", s.hub.ServeWS)

	r.Get("/page", s.handlePage)
	r.Get("/sync", s.handleSync)
	r.Post("/newItem", s.handleNewItem)
	r.Get("/downloadUrl", s.handleDownloadURL)

	r.Post("/auth", s.handleAuth)
	r.Get("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuthorization)

		r.Post("/removeItem", s.handleRemoveItem)
		r.Get("/removeAll", s.handleRemoveAll)

		r.Post("/fetchUploadId", s.handleFetchUploadID)
		r.Post("/uploadPart", s.handleUploadPart)
		r.Post("/completeUpload", s.handleCompleteUpload)

		r.Get("/device", s.handleDevices)
		r.Get("/deviceSignOut", s.handleDeviceSignOut)
	})

	return r
}
