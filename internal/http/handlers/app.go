package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pawshearts/internal/catalog"
	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
	"pawshearts/internal/middleware"
	"pawshearts/internal/pins"
	"pawshearts/internal/seo"
)

const maxBodyBytes = 1 << 20

// App holds the services behind the HTTP API.
type App struct {
	Ledger        *impact.Service
	Pins          *pins.Service
	Catalog       *catalog.Catalog
	DefaultRegion seo.Region
	AdminSecret   string
	Logger        zerolog.Logger
	Now           func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Required []string `json:"required,omitempty"`
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorBody{Error: msg, Code: code})
}

// fail maps service errors to responses. Internal failures are logged with
// the request id and answered with msg only.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if _, ok := pins.IsMissingFields(err); ok {
		a.json(w, http.StatusBadRequest, errorBody{Error: "Missing required fields", Code: "bad_request", Required: pins.RequiredFields})
		return
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	default:
		a.logger(r).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		a.error(w, http.StatusInternalServerError, "internal", msg)
	}
}

func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid payload"
		if !errors.Is(err, io.EOF) {
			msg = fmt.Sprintf("invalid payload: %v", err)
		}
		a.error(w, http.StatusBadRequest, "bad_request", msg)
		return false
	}
	return true
}

func (a *App) admin(h http.HandlerFunc) http.Handler {
	return middleware.AdminOnly(a.AdminSecret)(h)
}
