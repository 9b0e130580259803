// Package settingsui exposes the settings form surface over HTTP: one
// endpoint per field edit, each of which immediately persists the whole
// configuration, plus a connection test against the configured endpoint.
package settingsui

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/markdrop/internal/errs"
	"github.com/koustreak/markdrop/internal/logger"
	"github.com/koustreak/markdrop/internal/objstore"
	"github.com/koustreak/markdrop/internal/settings"
)

// Server serves the settings surface.
type Server struct {
	store *settings.Store
	dial  objstore.Dialer
	log   *logger.Logger
}

// NewServer creates a settings Server over store; dial is used by the
// connection test.
func NewServer(store *settings.Store, dial objstore.Dialer, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{store: store, dial: dial, log: log}
}

// Router builds the chi router for the settings surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/settings", s.getSettings)
	r.Put("/settings/{field}", s.putField)
	r.Post("/settings/ping", s.ping)

	return r
}

// settingsView is the GET representation of the configuration. The secret
// access key is masked in responses; it is persisted verbatim.
type settingsView struct {
	BucketName      string `json:"bucketName"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	PublicURL       string `json:"publicUrl"`
	Directory       string `json:"directory"`
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Current()
	ok(w, settingsView{
		BucketName:      cfg.BucketName,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: mask(cfg.SecretAccessKey),
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		PublicURL:       cfg.PublicURL,
		Directory:       cfg.Directory,
	})
}

// putField sets a single configuration field by its name and saves the
// whole record immediately. Values are not validated — an incomplete
// configuration is only caught by the upload precondition check.
func (s *Server) putField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	err := s.store.Update(func(cfg *settings.Config) error {
		return cfg.SetField(field, body.Value)
	})
	if err != nil {
		if errs.IsInvalidInput(err) {
			badRequest(w, err.Error())
			return
		}
		s.log.ErrorWith("settings save failed", err, map[string]interface{}{"field": field})
		internalError(w)
		return
	}

	s.log.With().Str("field", field).Logger().Debug("settings field updated")
	ok(w, map[string]string{"field": field})
}

// pingResult reports the outcome of a connection test.
type pingResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ping dials the configured endpoint with the current credentials and
// probes it. This is the "test connection" button of the settings form.
func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Current()
	if err := cfg.CheckUploadReady(); err != nil {
		ok(w, pingResult{Success: false, Message: err.Error()})
		return
	}

	conn, err := s.dial(cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey, cfg.Region)
	if err != nil {
		ok(w, pingResult{Success: false, Message: err.Error()})
		return
	}
	defer conn.Close()

	if err := conn.Ping(r.Context()); err != nil {
		ok(w, pingResult{Success: false, Message: err.Error()})
		return
	}
	ok(w, pingResult{Success: true, Message: "connection ok"})
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// --- JSON envelope helpers ---

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func ok(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: message})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "internal server error"})
}
