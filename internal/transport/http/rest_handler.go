package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"livecoder-service/internal/app"
	"livecoder-service/internal/domain"
)

// RESTHandler exposes the synchronous companion interface: room creation,
// the existence check, and the submit facade over the same advancement
// logic the websocket path uses.
type RESTHandler struct {
	service *app.RoomService
}

func NewRESTHandler(service *app.RoomService) *RESTHandler {
	return &RESTHandler{service: service}
}

// CreateRoom handles POST /rooms.
func (h *RESTHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	roomID := h.service.CreateRoom("")
	writeJSON(w, http.StatusCreated, map[string]string{"roomId": roomID})
}

// RoomExists handles GET /rooms/{id}.
func (h *RESTHandler) RoomExists(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	writeJSON(w, http.StatusOK, map[string]bool{"exists": h.service.RoomExists(roomID)})
}

type submitRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Submit handles POST /submit: grade the caller's current question and
// advance, returning the receipt synchronously.
func (h *RESTHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RoomID == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "missing roomId or username")
		return
	}

	receipt, err := h.service.Submit(r.Context(), req.RoomID, req.Username, req.Code, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownRoom), errors.Is(err, domain.ErrNoActiveChallenge):
			writeError(w, http.StatusBadRequest, domain.ErrNoActiveChallenge.Error())
		case errors.Is(err, domain.ErrUnknownParticipant):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
