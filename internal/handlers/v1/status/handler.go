package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carson-networks/account-lifecycle-server/internal/logging"
)

type coldStoreProbe interface {
	IsReachable(ctx context.Context) bool
}

// Response is the body of GET /status.
type Response struct {
	Status    string `json:"status"`
	ColdStore string `json:"coldStore"`
}

type Handler struct {
	ColdStore coldStoreProbe
}

func NewHandler(coldStore coldStoreProbe) Handler {
	return Handler{ColdStore: coldStore}
}

// Handler reports liveness. The cold store state is informational only.
func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	resp := Response{Status: "ok", ColdStore: "reachable"}
	if h.ColdStore != nil && !h.ColdStore.IsReachable(req.Context()) {
		resp.ColdStore = "unreachable"
	}
	logData.AddData("coldStore", resp.ColdStore)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(resp)
}
