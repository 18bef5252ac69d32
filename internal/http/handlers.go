package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
)

// Page carries what every full-page template renders in its frame.
type Page struct {
	Title    string
	Active   string
	Currency string
	Warning  string
	Store    storeView
}

type storeView struct {
	Path        string
	Exists      bool
	Size        int64
	Err         string
	Contents    string
	ContentsErr string
}

func (s *Server) newPage(title, active string, warning error) Page {
	p := Page{Title: title, Active: active, Currency: s.currency}
	if warning != nil {
		p.Warning = fmt.Sprintf("JSON file invalid: %v. Resetting file.", warning)
	}
	if s.storeInfo != nil {
		info, err := s.storeInfo.Stat()
		p.Store = storeView{Path: info.Path, Exists: info.Exists, Size: info.Size}
		if err != nil {
			p.Store.Err = err.Error()
		}
		if info.Exists {
			contents, err := s.storeInfo.Contents()
			if err != nil {
				p.Store.ContentsErr = err.Error()
			}
			p.Store.Contents = contents
		}
	}
	return p
}

// notice is the reset warning shown on the page, promoted to every view that
// embeds Page.
func (p Page) notice() string {
	return p.Warning
}

// render executes the template into a buffer so a failure never leaves a
// half-written page. A store reset warning is also raised as a notification
// for HTMX partial refreshes.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err.Error(), "template", name)
		InternalServerError("Failed to render page").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(buf.String())
	if n, ok := data.(interface{ notice() string }); ok && n.notice() != "" {
		resp.TriggerNotification(NotificationWarning, n.notice(), 8000)
	}
	resp.Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that templates parsed and the backing file is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.storeInfo != nil {
		if _, err := s.storeInfo.Stat(); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	NewHTMXResponse().
		Status(httpStatus).
		BodyJSON(map[string]any{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

type indexData struct {
	Page
	Categories []core.Category
	Today      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	s.render(w, r, "index.html", indexData{
		Page:       s.newPage("Add a New Expense", "add", nil),
		Categories: core.Categories(),
		Today:      core.DateOf(s.now()).String(),
	})
}

// requestContext bounds handler work on the store.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 10*time.Second)
}
