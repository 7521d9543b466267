package handler

import (
	"net/http"

	"github.com/buran83/makechat/internal/http/middleware"
	"github.com/buran83/makechat/internal/http/response"
	"github.com/buran83/makechat/internal/repository"
)

type UserHandler struct {
	users   repository.UserRepository
	perPage int
}

func NewUserHandler(users repository.UserRepository, perPage int) *UserHandler {
	return &UserHandler{users: users, perPage: perPage}
}

// List pages all user profiles. Admin only; password digests never
// serialize.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := response.PageParams(r, h.perPage, repository.MaxLimit)

	result, err := h.users.ListPage(r.Context(), repository.PageRequest{
		Offset: offset,
		Limit:  limit,
	}, h.perPage)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal error",
			"Could not list users.")
		return
	}
	response.JSON(w, http.StatusOK,
		response.NewPage("/api/users", result.Items, result.Total, result.Offset, result.Limit))
}

// Me reports the profile of the token-authenticated caller.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	response.JSON(w, http.StatusOK, user)
}
