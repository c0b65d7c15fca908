package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tj-backend/application/commands"
	"tj-backend/application/queries"
	"tj-backend/domain/core/entities"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/common"
)

// FavoriteHandler handles the caller's favorites
type FavoriteHandler struct {
	base
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(d Deps) *FavoriteHandler {
	return &FavoriteHandler{base: newBase(d)}
}

// ListFavorites handles GET /favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.ListFavoritesQuery{UserID: userID})
	if !ok {
		return
	}
	favs, ok := res.([]*entities.Favorite)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewFavoriteResponses(favs))
}

// AddFavorite handles POST /favorites {kind, target_id}
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req FavoriteRequest
	if !h.decode(w, r, &req) {
		return
	}
	target, err := req.Target()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.AddFavoriteCommand{UserID: userID, Target: target})
	if !ok {
		return
	}
	fav, ok := res.(*entities.Favorite)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusCreated, newFavoriteResponse(fav))
}

// RemoveFavorite handles DELETE /favorites/{kind}/{targetID}. Removing a
// favorite that does not exist succeeds.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	target, err := valueobjects.ParseFavoriteTarget(chi.URLParam(r, "kind"), chi.URLParam(r, "targetID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, ok := h.send(w, r, commands.RemoveFavoriteCommand{UserID: userID, Target: target}); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
