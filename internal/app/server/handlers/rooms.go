package handlers

import (
	"errors"
	"net/http"

	"murmur/internal/core/domain"
	"murmur/internal/core/services"
	"murmur/pkg/logging"
	"murmur/pkg/middleware"
)

type RoomHandler struct {
	rooms    *services.RoomService
	sessions *services.RoomManager
}

func NewRoomHandler(rooms *services.RoomService, sessions *services.RoomManager) *RoomHandler {
	return &RoomHandler{rooms: rooms, sessions: sessions}
}

// DeleteRoom lets the host end a room; connected members are told and disconnected.
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	roomID := r.PathValue("room_id")
	err := h.rooms.DeleteRoom(r.Context(), roomID, userID)
	switch {
	case err == nil:
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Room deleted successfully"})
	case errors.Is(err, domain.ErrRoomNotFound):
		middleware.WriteError(w, http.StatusNotFound, msgRoomNotFound)
	case errors.Is(err, domain.ErrNotRoomHost):
		middleware.WriteError(w, http.StatusForbidden, "Only the room host can delete the room")
	default:
		log.ErrorContext(r.Context(), "room handler - delete room - failed", logging.Room(roomID), logging.Err(err))
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete room")
	}
}

type participantsResponse struct {
	RoomID       string   `json:"room_id"`
	Participants []string `json:"participants"`
	Count        int      `json:"count"`
}

// Participants reports the live members of a room in join order.
func (h *RoomHandler) Participants(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room_id")
	ids := h.sessions.Members(roomID)
	middleware.WriteJSON(w, http.StatusOK, participantsResponse{RoomID: roomID, Participants: ids, Count: len(ids)})
}
