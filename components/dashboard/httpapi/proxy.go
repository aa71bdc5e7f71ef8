package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-finboard/components/dashboard"
)

// ProxyHandler forwards browser requests to the upstream API, attaching
// the server-held key so it never reaches the client. The upstream status
// and body pass through untouched: JSON stays JSON, anything else is
// relayed as plain text with the original status code.
type ProxyHandler struct {
	Client *dashboard.Client
	Logger *zap.Logger
}

// NewProxyHandler builds a proxy over client.
func NewProxyHandler(client *dashboard.Client, logger *zap.Logger) *ProxyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyHandler{Client: client, Logger: logger}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	endpoint := query.Get("endpoint")
	if endpoint == "" {
		writeJSONError(w, http.StatusBadRequest, "endpoint query parameter is required")
		return
	}

	params := map[string]string{}
	for key, values := range query {
		if key == "endpoint" || len(values) == 0 || values[0] == "" {
			continue
		}
		params[key] = values[0]
	}

	result, err := h.Client.Forward(r.Context(), endpoint, params)
	if err != nil {
		h.Logger.Warn("proxy forward failed", zap.String("endpoint", endpoint), zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	if result.JSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(result.Status)
	w.Write(result.Body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
