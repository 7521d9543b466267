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

type TokenHandler struct {
	tokens  *service.TokenService
	perPage int
}

func NewTokenHandler(tokens *service.TokenService, perPage int) *TokenHandler {
	return &TokenHandler{tokens: tokens, perPage: perPage}
}

// List pages the caller's own tokens in creation order.
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	offset, limit := response.PageParams(r, h.perPage, repository.MaxLimit)

	result, err := h.tokens.ListTokens(r.Context(), user, repository.PageRequest{
		Offset: offset,
		Limit:  limit,
	}, h.perPage)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Internal error",
			"Could not list tokens.")
		return
	}
	response.JSON(w, http.StatusOK,
		response.NewPage("/api/tokens", result.Items, result.Total, result.Offset, result.Limit))
}

// Create mints a named token for the caller.
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	payload, ok := payloadOrError(w, r)
	if !ok {
		return
	}
	name, ok := requireParam(w, payload, "name")
	if !ok {
		return
	}

	token, err := h.tokens.CreateToken(r.Context(), user, name)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Error occurred", err.Error())
		return
	}
	observability.Audit(r, "token.created", "username", user.Username, "token_name", name)
	response.JSON(w, http.StatusCreated, token)
}

// Delete revokes one of the caller's tokens. Tokens owned by other users
// are indistinguishable from missing ones.
func (h *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "Bad request", "Token does not exist.")
		return
	}

	if err := h.tokens.DeleteToken(r.Context(), user, uint(id)); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			response.Error(w, http.StatusBadRequest, "Bad request", "Token does not exist.")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Internal error",
			"Could not delete the token.")
		return
	}
	observability.Audit(r, "token.deleted", "username", user.Username, "token_id", id)
	response.OK(w)
}
