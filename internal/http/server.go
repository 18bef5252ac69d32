package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/middleware/security"
	"budget/internal/services"
	"budget/internal/storage"
	appweb "budget/web"
)

// ExpenseService is what the handlers need from the service layer.
// services.ExpenseService satisfies it.
type ExpenseService interface {
	Add(ctx context.Context, amount core.Amount, category core.Category, date core.Date) (core.Expense, error)
	List(ctx context.Context) (services.Listing, error)
	Summary(ctx context.Context, month *time.Time) (services.Report, error)
}

// StoreInfo reports on the backing file for the page footer and /readyz.
type StoreInfo interface {
	Stat() (storage.FileInfo, error)
	Contents() (string, error)
}

// Options tunes the server beyond its required collaborators.
type Options struct {
	CurrencySymbol string
	StoreInfo      StoreInfo
	MetricsEnabled bool
	// Now is the clock used for the default expense date.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates  *template.Template
	service    ExpenseService
	storeInfo  StoreInfo
	logger     *applog.Logger
	structured *applog.StructuredLogger
	currency   string
	now        func() time.Time
	startedAt  time.Time
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc ExpenseService, logger *applog.Logger, opts Options) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "£"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	httpLogger := logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		service:    svc,
		storeInfo:  opts.StoreInfo,
		logger:     httpLogger,
		structured: applog.NewStructuredLogger(httpLogger),
		currency:   opts.CurrencySymbol,
		now:        opts.Now,
		startedAt:  time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		httpLogger.Warn("Failed parsing templates", applog.FieldError, err.Error())
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		httpLogger.Warn("Failed to mount embedded static FS", applog.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/expenses", s.handleExpenses)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/expenses", s.handleAPIExpenses)
	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if opts.MetricsEnabled {
		mux.Handle("/metrics", metrics.Handler())
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.instrument(handler)
	handler = headers.Middleware(handler)
	handler = applog.RequestIDMiddleware(requestID)(handler)
	handler = applog.Middleware(httpLogger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// instrument records the request in metrics and the request log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		metrics.ObserveHTTP(routeLabel(r.URL.Path), rw.statusCode, elapsed)
		s.structured.LogHTTPEnd(r.Context(), r, rw.statusCode, elapsed.Milliseconds(), clientIP(r))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
	return s.Server.Shutdown(ctx)
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(a core.Amount) string { return a.Format(s.currency) },
	}
}
