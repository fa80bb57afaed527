package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdfhilite/pdfhilite/internal/config"
	"github.com/pdfhilite/pdfhilite/internal/outstore"
	"github.com/pdfhilite/pdfhilite/internal/pipeline"
	"github.com/pdfhilite/pdfhilite/internal/webui"
)

// Server is the HTTP API for the highlight extraction service.
type Server struct {
	router    chi.Router
	processor *pipeline.Processor
	store     *outstore.Store
	log       *slog.Logger
	cfg       config.Config
	indexHTML []byte
}

// NewServer creates and configures the HTTP server.
func NewServer(proc *pipeline.Processor, store *outstore.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		processor: proc,
		store:     store,
		log:       log,
		cfg:       cfg,
	}

	page, err := webui.Page()
	if err != nil {
		log.Error("frontend render failed, serving without it", "error", err)
	}
	s.indexHTML = page

	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)

	// Upload and download carry the restricted CORS policy.
	r.Group(func(r chi.Router) {
		r.Use(CORS(s.cfg.AllowedOrigins()))

		r.Post("/upload-pdf", s.handleUpload)
		r.Get("/download-pdf/{filename}", s.handleDownloadPDF)
		r.Get("/download-docx/{filename}", s.handleDownloadDOCX)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if len(s.indexHTML) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.indexHTML)
}
