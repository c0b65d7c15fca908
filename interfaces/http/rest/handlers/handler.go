// Package handlers implements the /api/v2 endpoints on top of the command
// and query buses.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tj-backend/application/commands/bus"
	querybus "tj-backend/application/queries/bus"
	"tj-backend/domain/core/valueobjects"
	"tj-backend/pkg/auth"
	"tj-backend/pkg/common"
	"tj-backend/pkg/errors"
)

// maxBodyBytes bounds request bodies; diaries carry the longest text
const maxBodyBytes = 1 << 20

// Deps are the collaborators every handler needs
type Deps struct {
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Errors     *errors.ErrorHandler
	Logger     *zap.Logger
}

type base struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errs       *errors.ErrorHandler
	logger     *zap.Logger
}

func newBase(d Deps) base {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	errs := d.Errors
	if errs == nil {
		errs = errors.NewErrorHandler(logger, false)
	}
	return base{
		commandBus: d.CommandBus,
		queryBus:   d.QueryBus,
		errs:       errs,
		logger:     logger,
	}
}

// send dispatches cmd and renders any failure. ok is false when a response
// has already been written.
func (h *base) send(w http.ResponseWriter, r *http.Request, cmd bus.Command) (interface{}, bool) {
	res, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errs.Handle(w, r, err)
		return nil, false
	}
	return res, true
}

// ask dispatches q and renders any failure
func (h *base) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) (interface{}, bool) {
	res, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errs.Handle(w, r, err)
		return nil, false
	}
	return res, true
}

func (h *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errs.Handle(w, r, err)
}

// unexpected reports a bus result of the wrong type
func (h *base) unexpected(w http.ResponseWriter, r *http.Request, res interface{}) {
	h.errs.Handle(w, r, errors.NewInternalError(fmt.Sprintf("unexpected result type %T", res)))
}

func (h *base) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v, maxBodyBytes); err != nil {
		h.errs.Handle(w, r, err)
		return false
	}
	return true
}

// currentUser returns the caller attached by the auth middleware
func currentUser(r *http.Request) (valueobjects.UserID, error) {
	id, ok := auth.UserFromContext(r.Context())
	if !ok {
		return 0, errors.NewUnauthorizedError("authentication required")
	}
	return id, nil
}

// optionalUser returns the caller or zero for anonymous requests
func optionalUser(r *http.Request) valueobjects.UserID {
	id, _ := auth.UserFromContext(r.Context())
	return id
}

func locationParam(r *http.Request, name string) (valueobjects.LocationID, error) {
	return valueobjects.ParseLocationID(chi.URLParam(r, name))
}

func routeParam(r *http.Request, name string) (valueobjects.RouteID, error) {
	return valueobjects.ParseRouteID(chi.URLParam(r, name))
}

func diaryParam(r *http.Request, name string) (valueobjects.DiaryID, error) {
	return valueobjects.ParseDiaryID(chi.URLParam(r, name))
}

func userParam(r *http.Request, name string) (valueobjects.UserID, error) {
	return valueobjects.ParseUserID(chi.URLParam(r, name))
}
