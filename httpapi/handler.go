// Package httpapi exposes document generation over HTTP.
//
// Routes:
//
//	POST /api/carteiras          self-printing card document (HTML)
//	POST /api/carteiras/pdf      card sheets rendered on the server
//	POST /api/fichas             self-printing registration forms (HTML)
//	POST /api/fichas/pdf         registration forms rendered on the server
//	POST /api/qr/parse           decode a scanned card QR payload
//	GET  /api/photo-proxy?url=   same-origin image proxy
//	GET  /health
//	GET  /metrics
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/docgen"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/qrpayload"
)

// DefaultMaxBodyBytes bounds request bodies. Records may carry photos as
// data URIs, hence the generous limit.
const DefaultMaxBodyBytes = 32 << 20

// Generator produces documents. *docgen.Service satisfies it.
type Generator interface {
	CarteirasHTML(ctx context.Context, req docgen.CarteiraRequest) (*docgen.Result, error)
	CarteirasPDF(ctx context.Context, req docgen.CarteiraRequest) (*docgen.Result, error)
	FichasHTML(ctx context.Context, req docgen.FichaRequest) (*docgen.Result, error)
	FichasPDF(ctx context.Context, req docgen.FichaRequest) (*docgen.Result, error)
}

// Fetcher downloads remote images for the photo proxy. *photo.Resolver
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// ExportRequest carries the document export knobs.
type ExportRequest struct {
	Mode              string `json:"mode,omitempty"`
	Toolbar           bool   `json:"toolbar,omitempty"`
	Title             string `json:"title,omitempty" validate:"max=200"`
	FileName          string `json:"fileName,omitempty" validate:"max=120"`
	ResourceTimeoutMs int64  `json:"resourceTimeoutMs,omitempty" validate:"gte=0,lte=600000"`
}

// Options converts the request into export options.
func (e ExportRequest) Options(defaults []carteira.Option) ([]carteira.Option, error) {
	opts := append([]carteira.Option(nil), defaults...)
	if e.Mode != "" {
		m := carteira.Mode(e.Mode)
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q", carteira.ErrInvalidMode, e.Mode)
		}
		opts = append(opts, carteira.WithMode(m))
	}
	if e.Toolbar {
		opts = append(opts, carteira.WithToolbar(true))
	}
	if e.Title != "" {
		opts = append(opts, carteira.WithTitle(e.Title))
	}
	if e.FileName != "" {
		opts = append(opts, carteira.WithFileName(e.FileName))
	}
	if e.ResourceTimeoutMs > 0 {
		opts = append(opts, carteira.WithResourceTimeout(time.Duration(e.ResourceTimeoutMs)*time.Millisecond))
	}
	return opts, nil
}

// CarteiraRequest is the body of the card endpoints.
type CarteiraRequest struct {
	Members  []*member.Record `json:"members" validate:"required,min=1,max=500,dive,required"`
	Settings member.Settings  `json:"settings"`
	Export   ExportRequest    `json:"export"`
}

// FichaRequest is the body of the ficha endpoints.
type FichaRequest struct {
	Members     []*member.Record `json:"members" validate:"required,min=1,max=500,dive,required"`
	Title       string           `json:"title,omitempty" validate:"max=200"`
	GeneratedBy string           `json:"generatedBy,omitempty" validate:"max=120"`
	Export      ExportRequest    `json:"export"`
}

// QRParseRequest is the body of POST /api/qr/parse.
type QRParseRequest struct {
	Payload string `json:"payload" validate:"notblank,max=4096"`
}

// QRParseResponse reports the decoded fields of a card payload.
type QRParseResponse struct {
	Valid   bool              `json:"valid"`
	Version int               `json:"version,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Handler serves the API.
type Handler struct {
	gen      Generator
	fetcher  Fetcher
	export   []carteira.Option
	gatherer prometheus.Gatherer
	metrics  *Metrics
	maxBody  int64
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithFetcher enables the photo proxy.
func WithFetcher(f Fetcher) Option {
	return func(h *Handler) { h.fetcher = f }
}

// WithExportDefaults sets export options applied before the request's own.
func WithExportDefaults(opts ...carteira.Option) Option {
	return func(h *Handler) { h.export = opts }
}

// WithMetrics serves g on /metrics and records HTTP metrics in m.
func WithMetrics(g prometheus.Gatherer, m *Metrics) Option {
	return func(h *Handler) {
		h.gatherer = g
		h.metrics = m
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) { h.maxBody = n }
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// New returns a Handler.
func New(gen Generator, opts ...Option) *Handler {
	h := &Handler{
		gen:     gen,
		maxBody: DefaultMaxBodyBytes,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router with all middleware mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(h.logger))
	r.Use(Logger(h.logger))
	r.Use(Instrument(h.metrics))

	r.Get("/health", h.HandleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/carteiras", h.HandleCarteiras(false))
		r.Post("/carteiras/pdf", h.HandleCarteiras(true))
		r.Post("/fichas", h.HandleFichas(false))
		r.Post("/fichas/pdf", h.HandleFichas(true))
		r.Post("/qr/parse", h.HandleQRParse)
		r.Get("/photo-proxy", h.HandlePhotoProxy)
	})
	return r
}

// HandleHealth implements GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCarteiras implements POST /api/carteiras and /api/carteiras/pdf.
func (h *Handler) HandleCarteiras(pdf bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CarteiraRequest
		if !h.decode(w, r, &req) {
			return
		}
		opts, err := req.Export.Options(h.export)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		in := docgen.CarteiraRequest{Members: req.Members, Settings: req.Settings, Export: opts}

		var res *docgen.Result
		if pdf {
			res, err = h.gen.CarteirasPDF(r.Context(), in)
		} else {
			res, err = h.gen.CarteirasHTML(r.Context(), in)
		}
		h.respond(w, r, res, err)
	}
}

// HandleFichas implements POST /api/fichas and /api/fichas/pdf.
func (h *Handler) HandleFichas(pdf bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FichaRequest
		if !h.decode(w, r, &req) {
			return
		}
		opts, err := req.Export.Options(h.export)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		in := docgen.FichaRequest{Members: req.Members, Title: req.Title, GeneratedBy: req.GeneratedBy, Export: opts}

		var res *docgen.Result
		if pdf {
			res, err = h.gen.FichasPDF(r.Context(), in)
		} else {
			res, err = h.gen.FichasHTML(r.Context(), in)
		}
		h.respond(w, r, res, err)
	}
}

// HandleQRParse implements POST /api/qr/parse. Payloads that are not card
// payloads answer 200 with valid=false.
func (h *Handler) HandleQRParse(w http.ResponseWriter, r *http.Request) {
	var req QRParseRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, ok := qrpayload.Parse(req.Payload)
	if !ok {
		writeJSON(w, http.StatusOK, QRParseResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, QRParseResponse{
		Valid:   true,
		Version: qrpayload.SchemaVersion(req.Payload),
		Fields:  fields,
	})
}

// HandlePhotoProxy implements GET /api/photo-proxy?url=. Only http(s) image
// responses within the size limit are relayed.
func (h *Handler) HandlePhotoProxy(w http.ResponseWriter, r *http.Request) {
	if h.fetcher == nil {
		writeError(w, http.StatusNotFound, "not_found", "photo proxy disabled")
		return
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "url query parameter is required")
		return
	}
	data, mediaType, err := h.fetcher.Fetch(r.Context(), target)
	if err != nil {
		h.logger.WarnContext(r.Context(), "photo proxy fetch failed",
			"error", err,
			"request_id", RequestIDFrom(r.Context()),
		)
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) //nolint:errcheck // headers already sent
}

// decode reads and validates a JSON body into v, answering the request on
// failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body",
			"error", err,
			"request_id", RequestIDFrom(r.Context()),
		)
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, validationError(err))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, res *docgen.Result, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "document generation failed",
			"error", err,
			"request_id", RequestIDFrom(r.Context()),
		)
		writeDomainError(w, err)
		return
	}
	disposition := "inline"
	if res.ContentType == docgen.ContentTypePDF {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": res.FileName}))
	w.Header().Set("X-Document-ID", res.ID)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body) //nolint:errcheck // headers already sent
}
