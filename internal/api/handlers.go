package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"coffeeshop/internal/auth"
	"coffeeshop/internal/drinks"
	"coffeeshop/internal/httputils"
	"coffeeshop/internal/observability/logging"

	"github.com/gorilla/mux"
)

const (
	messageBadRequest       = "bad request"
	messageNotFound         = "Drink is not available in application"
	messageMethodNotAllowed = "method not allowed"
	messageUnprocessable    = "unprocessable"
	messageInternal         = "internal server error"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

type drinksResponse struct {
	Success bool `json:"success"`
	Drinks  any  `json:"drinks"`
}

type deleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

type createRequest struct {
	Title  *string        `json:"title"`
	Recipe *drinks.Recipe `json:"recipe"`
}

func (r *Router) listDrinks(w http.ResponseWriter, req *http.Request) {
	all, err := r.store.List(req.Context())
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}

	short := make([]drinks.ShortDrink, 0, len(all))
	for _, d := range all {
		short = append(short, d.Short())
	}
	httputils.WriteJSON(w, req, http.StatusOK, drinksResponse{Success: true, Drinks: short})
}

func (r *Router) drinkDetails(_ auth.Claims, w http.ResponseWriter, req *http.Request) {
	all, err := r.store.List(req.Context())
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}

	long := make([]drinks.LongDrink, 0, len(all))
	for _, d := range all {
		long = append(long, d.Long())
	}
	httputils.WriteJSON(w, req, http.StatusOK, drinksResponse{Success: true, Drinks: long})
}

func (r *Router) createDrink(claims auth.Claims, w http.ResponseWriter, req *http.Request) {
	var body createRequest
	if err := decodeBody(w, req, &body); err != nil || body.Title == nil || body.Recipe == nil {
		httputils.WriteError(w, req, http.StatusBadRequest, messageBadRequest)
		return
	}

	created, err := r.store.Insert(req.Context(), drinks.Drink{Title: *body.Title, Recipe: *body.Recipe})
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}

	logging.FromContextOr(req.Context(), r.logger).Info("Drink added", "id", created.ID, "subject", claims.Subject())
	httputils.WriteJSON(w, req, http.StatusOK, drinksResponse{Success: true, Drinks: []drinks.LongDrink{created.Long()}})
}

func (r *Router) updateDrink(claims auth.Claims, w http.ResponseWriter, req *http.Request) {
	id, ok := drinkID(req)
	if !ok {
		httputils.WriteError(w, req, http.StatusNotFound, messageNotFound)
		return
	}

	var update drinks.Update
	if err := decodeBody(w, req, &update); err != nil {
		httputils.WriteError(w, req, http.StatusBadRequest, messageBadRequest)
		return
	}

	updated, err := r.store.Update(req.Context(), id, update)
	if err != nil {
		r.writeStoreError(w, req, err)
		return
	}

	logging.FromContextOr(req.Context(), r.logger).Info("Drink changed", "id", id, "subject", claims.Subject())
	httputils.WriteJSON(w, req, http.StatusOK, drinksResponse{Success: true, Drinks: []drinks.LongDrink{updated.Long()}})
}

func (r *Router) deleteDrink(claims auth.Claims, w http.ResponseWriter, req *http.Request) {
	id, ok := drinkID(req)
	if !ok {
		httputils.WriteError(w, req, http.StatusNotFound, messageNotFound)
		return
	}

	if err := r.store.Delete(req.Context(), id); err != nil {
		r.writeStoreError(w, req, err)
		return
	}

	logging.FromContextOr(req.Context(), r.logger).Info("Drink removed", "id", id, "subject", claims.Subject())
	httputils.WriteJSON(w, req, http.StatusOK, deleteResponse{Success: true, Delete: id})
}

// writeStoreError renders a store failure with the matching status
func (r *Router) writeStoreError(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, drinks.ErrNotFound):
		httputils.WriteError(w, req, http.StatusNotFound, messageNotFound)
	case errors.Is(err, drinks.ErrInvalid):
		httputils.WriteError(w, req, http.StatusBadRequest, messageBadRequest)
	case errors.Is(err, drinks.ErrDuplicateTitle):
		httputils.WriteError(w, req, http.StatusUnprocessableEntity, messageUnprocessable)
	default:
		logging.FromContextOr(req.Context(), r.logger).Error("Drink store failure", logging.Err(err))
		httputils.WriteError(w, req, http.StatusInternalServerError, messageInternal)
	}
}

func decodeBody(w http.ResponseWriter, req *http.Request, dst any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	return json.NewDecoder(req.Body).Decode(dst)
}

func drinkID(req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
