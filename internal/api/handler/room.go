package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/gamehub/internal/api/apierr"
	"github.com/example/gamehub/internal/api/middleware"
	"github.com/example/gamehub/internal/api/request"
	"github.com/example/gamehub/internal/api/response"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	coordinator room.ControllerInterface
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(coordinator room.ControllerInterface) *RoomHandler {
	return &RoomHandler{
		coordinator: coordinator,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	created, err := h.coordinator.CreateRoom(r.Context(), req.Name, req.Capacity)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomInfoFromModel(created.Info()))
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.coordinator.ListAllRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomListFromModel(infos))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := pathRoomID(r)

	found, err := h.coordinator.GetRoom(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	members, err := h.coordinator.ListRoomPlayers(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(found, members))
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	roomID := pathRoomID(r)

	var req request.JoinRoomRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("invalid request body"))
			return
		}
	}

	joined, err := h.coordinator.JoinRoom(r.Context(), roomID, player.ID, req.CharacterName)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !joined {
		WriteError(w, h.joinFailure(r, roomID))
		return
	}

	info, _, err := h.coordinator.RoomStatus(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResult{
		Joined: true,
		Room:   response.RoomInfoFromModel(info),
	})
}

// joinFailure inspects the room to explain a rejected join
func (h *RoomHandler) joinFailure(r *http.Request, roomID model.RoomID) error {
	info, exists, err := h.coordinator.RoomStatus(r.Context(), roomID)
	if err != nil || !exists {
		return apierr.NewRoomNotFoundError()
	}
	if info.CurrentPlayers >= info.MaxPlayers {
		return apierr.NewRoomFullError()
	}
	return apierr.NewAlreadyInRoomError()
}

// Leave handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	roomID := pathRoomID(r)

	left, err := h.coordinator.LeaveRoom(r.Context(), roomID, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !left {
		if _, exists, serr := h.coordinator.RoomStatus(r.Context(), roomID); serr == nil && !exists {
			WriteError(w, apierr.NewRoomNotFoundError())
			return
		}
		WriteError(w, apierr.NewNotInRoomError())
		return
	}

	response.NoContent(w)
}

// Players handles GET /api/v1/rooms/{id}/players
func (h *RoomHandler) Players(w http.ResponseWriter, r *http.Request) {
	roomID := pathRoomID(r)

	if _, err := h.coordinator.GetRoom(r.Context(), roomID); err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			WriteError(w, apierr.NewRoomNotFoundError())
			return
		}
		WriteError(w, err)
		return
	}

	members, err := h.coordinator.ListRoomPlayers(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	characters := make([]response.Character, len(members))
	for i, m := range members {
		characters[i] = response.CharacterFromModel(m)
	}
	response.JSON(w, http.StatusOK, characters)
}

// Broadcast handles POST /api/v1/rooms/{id}/message
func (h *RoomHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	roomID := pathRoomID(r)

	var req request.BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Message == "" {
		WriteError(w, NewInvalidRequestError("message is required"))
		return
	}

	sent, err := h.coordinator.BroadcastMessage(r.Context(), roomID, req.Message, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !sent {
		WriteError(w, apierr.NewRoomNotFoundError())
		return
	}

	response.NoContent(w)
}

func pathRoomID(r *http.Request) model.RoomID {
	return model.RoomID(mux.Vars(r)["id"])
}
