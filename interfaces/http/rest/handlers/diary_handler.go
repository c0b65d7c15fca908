package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tj-backend/application/commands"
	"tj-backend/application/queries"
	"tj-backend/application/services"
	"tj-backend/domain/core/entities"
	"tj-backend/pkg/common"
	"tj-backend/pkg/errors"
)

// DiaryHandler handles diary-related HTTP requests
type DiaryHandler struct {
	base
}

// NewDiaryHandler creates a new diary handler
func NewDiaryHandler(d Deps) *DiaryHandler {
	return &DiaryHandler{base: newBase(d)}
}

// CreateDiary handles POST /diaries
func (h *DiaryHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req DiaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.CreateDiaryCommand{UserID: userID, DiaryFields: fields})
	if !ok {
		return
	}
	h.respondDiary(w, r, http.StatusCreated, res)
}

// GetDiary handles GET /diaries/{diaryID}. Private diaries are only visible
// to their author.
func (h *DiaryHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	id, err := diaryParam(r, "diaryID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.GetDiaryQuery{Requester: optionalUser(r), ID: id})
	if !ok {
		return
	}
	h.respondDiary(w, r, http.StatusOK, res)
}

// UpdateDiary handles PUT /diaries/{diaryID}
func (h *DiaryHandler) UpdateDiary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := diaryParam(r, "diaryID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req DiaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	fields, err := req.Fields()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.UpdateDiaryCommand{UserID: userID, ID: id, DiaryFields: fields})
	if !ok {
		return
	}
	h.respondDiary(w, r, http.StatusOK, res)
}

// DeleteDiary handles DELETE /diaries/{diaryID}
func (h *DiaryHandler) DeleteDiary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := diaryParam(r, "diaryID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, ok := h.send(w, r, commands.DeleteDiaryCommand{UserID: userID, ID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LikeDiary handles POST /diaries/{diaryID}/like
func (h *DiaryHandler) LikeDiary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := diaryParam(r, "diaryID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.send(w, r, commands.LikeDiaryCommand{UserID: userID, ID: id})
	if !ok {
		return
	}
	likes, ok := res.(int64)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, LikeResponse{DiaryID: id, Likes: likes})
}

// ListByUser handles GET /diaries/user/{userID}
func (h *DiaryHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "userID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.DiariesByUserQuery{
		Requester: optionalUser(r),
		UserID:    userID,
		Paging:    queries.Paging{Page: paging.Page, PageSize: paging.PageSize},
	})
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// ListByLocation handles GET /diaries/location/{locationID}
func (h *DiaryHandler) ListByLocation(w http.ResponseWriter, r *http.Request) {
	id, err := locationParam(r, "locationID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.DiariesByLocationQuery{
		LocationID: id,
		Paging:     queries.Paging{Page: paging.Page, PageSize: paging.PageSize},
	})
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// ListByTag handles GET /diaries/tag/{tag}
func (h *DiaryHandler) ListByTag(w http.ResponseWriter, r *http.Request) {
	paging, err := common.ExtractPaginationParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, ok := h.ask(w, r, queries.DiariesByTagQuery{
		Tag:    chi.URLParam(r, "tag"),
		Paging: queries.Paging{Page: paging.Page, PageSize: paging.PageSize},
	})
	if !ok {
		return
	}
	h.respondPage(w, r, res)
}

// PopularDiaries handles GET /diaries/popular?limit=
func (h *DiaryHandler) PopularDiaries(w http.ResponseWriter, r *http.Request) {
	limit, err := common.QueryInt(r, "limit", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit < 0 {
		h.fail(w, r, errors.NewValidationErrorf("limit must be positive, got %d", limit))
		return
	}

	res, ok := h.ask(w, r, queries.PopularDiariesQuery{Limit: limit})
	if !ok {
		return
	}
	diaries, ok := res.([]*entities.Diary)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, http.StatusOK, diaries)
}

func (h *DiaryHandler) respondDiary(w http.ResponseWriter, r *http.Request, status int, res interface{}) {
	diary, ok := res.(*entities.Diary)
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondJSON(w, status, diary)
}

func (h *DiaryHandler) respondPage(w http.ResponseWriter, r *http.Request, res interface{}) {
	page, ok := res.(services.PageResult[*entities.Diary])
	if !ok {
		h.unexpected(w, r, res)
		return
	}
	common.RespondPage(w, r, page.Items, page.Page, page.PageSize, page.Total)
}
