package handlers

import (
	"fmt"
	"net/http"

	"github.com/tobias915/leadership-companion/libs/httpx"
)

// Count serves the spots counter. It never returns an error status: the
// cache degrades to a stale or zero value on fetch failure.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}

	count := h.counts.Get(r.Context())

	// Advertise the same freshness window to edge caches, with a longer
	// serve-stale allowance.
	ttl := int(h.counts.TTL().Seconds())
	w.Header().Set("Cache-Control", fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", ttl, 5*ttl))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"count": count})
}
