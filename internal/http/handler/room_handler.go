package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/buran83/makechat/internal/http/middleware"
	"github.com/buran83/makechat/internal/http/response"
	"github.com/buran83/makechat/internal/observability"
	"github.com/buran83/makechat/internal/repository"
	"github.com/buran83/makechat/internal/service"
)

type RoomHandler struct {
	rooms   *service.RoomService
	perPage int
}

func NewRoomHandler(rooms *service.RoomService, perPage int) *RoomHandler {
	return &RoomHandler{rooms: rooms, perPage: perPage}
}

// List returns the paginated room collection. Admins see every room,
// everyone else sees visible rooms only.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	offset, limit := response.PageParams(r, h.perPage, repository.MaxLimit)

	result, err := h.rooms.ListRooms(r.Context(), user, repository.PageRequest{
		Offset: offset,
		Limit:  limit,
	}, h.perPage)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal error",
			"Could not list rooms.")
		return
	}
	response.JSON(w, http.StatusOK,
		response.NewPage("/api/rooms", result.Items, result.Total, result.Offset, result.Limit))
}

// Create makes a new room with the caller as its owner.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	payload, ok := payloadOrError(w, r)
	if !ok {
		return
	}
	name, ok := requireParam(w, payload, "name")
	if !ok {
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), user, name,
		payload.Bool("is_open", true), payload.Bool("is_visible", true))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Error occurred", err.Error())
		return
	}
	observability.Audit(r, "room.created", "room", room.Name, "username", user.Username)
	response.JSON(w, http.StatusCreated, room)
}

// Update applies a partial update. Only the room's owner may change it.
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	roomID, ok := roomIDParam(w, r)
	if !ok {
		return
	}
	payload, ok := payloadOrError(w, r)
	if !ok {
		return
	}

	var update service.RoomUpdate
	if name, ok := payload.String("name"); ok {
		update.Name = &name
	}
	if v, ok := payload["is_visible"].(bool); ok {
		update.IsVisible = &v
	}
	if v, ok := payload["is_open"].(bool); ok {
		update.IsOpen = &v
	}

	room, err := h.rooms.UpdateRoom(r.Context(), user, roomID, update)
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		response.Error(w, http.StatusBadRequest, "Bad request", "Room does not exist.")
		return
	case errors.Is(err, service.ErrNotOwner):
		response.Error(w, http.StatusBadRequest, "Bad request",
			"You are not owner of this room.")
		return
	case errors.Is(err, service.ErrNothingToUpdate):
		response.Error(w, http.StatusBadRequest, "Bad request", "Nothing to update.")
		return
	case err != nil:
		response.Error(w, http.StatusBadRequest, "Error occurred", err.Error())
		return
	}
	response.JSON(w, http.StatusOK, room)
}

// Delete removes a room. Owners may delete their own rooms; everyone else
// is refused.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	roomID, ok := roomIDParam(w, r)
	if !ok {
		return
	}

	err := h.rooms.DeleteRoom(r.Context(), user, roomID)
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		response.Error(w, http.StatusBadRequest, "Bad request", "Room does not exist.")
		return
	case errors.Is(err, service.ErrNotOwner):
		response.Error(w, http.StatusForbidden, "Permission Denied",
			"You are not owner of this room.")
		return
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "Internal error",
			"Could not delete the room.")
		return
	}
	observability.Audit(r, "room.deleted", "room_id", roomID, "username", user.Username)
	response.OK(w)
}

func roomIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "Bad request", "Room does not exist.")
		return 0, false
	}
	return uint(id), true
}
