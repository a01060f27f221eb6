package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"billtrack/internal/config"
	"billtrack/pkg/response"
)

type AdminHandler struct {
	service BillService
	cfg     *config.Config
}

func NewAdminHandler(service BillService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{service: service, cfg: cfg}
}

// PurgeBills handles DELETE /admin/purge. The shared secret comes from
// the X-Admin-Token header or the token query parameter; with no secret
// configured the endpoint always denies.
func (h *AdminHandler) PurgeBills(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		response.Unauthorized(w)
		return
	}

	count, err := h.service.PurgeBills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Warn("purged all bills", "deleted", count)
	response.Purged(w, count)
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	expected := h.cfg.Admin.PurgeToken
	if expected == "" {
		return false
	}

	provided := r.Header.Get("X-Admin-Token")
	if provided == "" {
		provided = r.URL.Query().Get("token")
	}

	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
