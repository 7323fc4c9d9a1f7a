package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := a.Ledger.Ledger(r.Context()); err != nil {
		a.logger(r).Warn().Err(err).Msg("health: ledger unavailable")
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
