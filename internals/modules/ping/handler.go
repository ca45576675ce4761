package ping

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"taskalive/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ingestBody struct {
	Message string `json:"message"`
}

type ingestResponse struct {
	NextPing time.Time `json:"next_ping"`
}

// Ingest serves GET and POST /ping/{token}. Token possession is the only
// authentication; every call is a new signal.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	token := chi.URLParam(r, "token")

	var message string
	if r.Method == http.MethodPost {
		var body ingestBody
		// body is optional
		_ = json.NewDecoder(r.Body).Decode(&body)
		message = body.Message
	} else {
		message = r.URL.Query().Get("message")
	}

	res, err := h.service.Ingest(ctx, token, message, clientIP(r))
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "Ping received", ingestResponse{
		NextPing: res.NextPing,
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// first hop
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
