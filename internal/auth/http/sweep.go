package http

import (
	"net/http"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/authsdk"
	"github.com/aussiebroadwan/tabkeeper/pkg/httpx"
)

// SweepHandler serves POST /v1/admin/sweep, running one housekeeping pass
// without waiting for the next tick.
type SweepHandler struct {
	HousekeepingService *service.HousekeepingService
}

func (h *SweepHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := h.HousekeepingService.Sweep()
	httpx.WriteJSON(w, http.StatusOK, authsdk.SweepResponse{
		ExpiredTokens: res.Tokens,
		ExpiredCodes:  res.Codes,
	})
}
