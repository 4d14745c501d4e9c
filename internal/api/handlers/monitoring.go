// internal/api/handlers/monitoring.go
package handlers

import (
	"net/http"
	"time"

	"github.com/autopay/backend/internal/api/httpx"
	"github.com/autopay/backend/internal/auth"
	"github.com/autopay/backend/internal/monitor"
)

type MonitoringHandler struct {
	tm      *auth.TokenManager
	tracker *monitor.Tracker
	key     string
	keyHash string
}

func NewMonitoringHandler(tm *auth.TokenManager, tracker *monitor.Tracker, key, keyHash string) *MonitoringHandler {
	return &MonitoringHandler{tm: tm, tracker: tracker, key: key, keyHash: keyHash}
}

type tokenReq struct {
	Key string `json:"key"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token exchanges the monitoring key for a short-lived bearer token. The key
// comes from the X-Monitoring-Key header or a JSON body {"key": "..."}.
func (h *MonitoringHandler) Token(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Monitoring-Key")
	if key == "" && r.Body != nil {
		var req tokenReq
		if err := httpx.Decode(r, &req); err == nil {
			key = req.Key
		}
	}

	if !auth.VerifyMonitoringKey(key, h.key, h.keyHash) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "invalid monitoring credentials", nil)
		return
	}

	token, exp, err := h.tm.Generate(auth.ScopeMonitoring)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(exp).Seconds()),
	})
}

// Errors reports error counts and the most recent failures.
func (h *MonitoringHandler) Errors(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.tracker.Summary())
}
