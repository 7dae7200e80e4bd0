// Package recipes holds the HTTP handlers that translate repository
// outcomes into the {code, success, message, result} envelope.
package recipes

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"cookbook/cookbook"
	"cookbook/models"
	"cookbook/rdx"
	"cookbook/utils"
)

type Handler struct {
	book  *cookbook.Cookbook
	cache *rdx.Cache
	log   *zap.Logger
}

func NewHandler(book *cookbook.Cookbook, cache *rdx.Cache, log *zap.Logger) *Handler {
	return &Handler{book: book, cache: cache, log: log}
}

// GetHome answers GET / with the recipe list wrapped under a "recipes" key.
func (h *Handler) GetHome(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, recipes := h.list(r)
	switch res.Status {
	case cookbook.StatusFound:
		utils.WriteEnvelope(w, http.StatusOK, res.Message, map[string]any{"recipes": recipes})
	case cookbook.StatusEmpty:
		utils.WriteEnvelope(w, http.StatusNotFound, res.Message, nil)
	default:
		utils.WriteEnvelope(w, http.StatusInternalServerError, res.Message, nil)
	}
}

// GetAll answers GET /recipes with the bare recipe list.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, recipes := h.list(r)
	switch res.Status {
	case cookbook.StatusFound:
		utils.WriteEnvelope(w, http.StatusOK, res.Message, recipes)
	case cookbook.StatusEmpty:
		utils.WriteEnvelope(w, http.StatusNotFound, res.Message, []models.Recipe{})
	default:
		utils.WriteEnvelope(w, http.StatusInternalServerError, res.Message, nil)
	}
}

func (h *Handler) list(r *http.Request) (cookbook.Result, []models.Recipe) {
	ctx := r.Context()
	if cached, ok := h.cache.GetRecipes(ctx); ok {
		return cookbook.Result{Status: cookbook.StatusFound,
			Message: "Successfully retrieved all recipes."}, cached
	}
	res := h.book.List(ctx)
	if res.Status == cookbook.StatusFound {
		h.cache.SetRecipes(ctx, res.Recipes)
	}
	return res, res.Recipes
}

// GetOne answers GET /recipe?name= with a case-insensitive lookup.
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name := r.URL.Query().Get("name")
	if name == "" {
		utils.WriteEnvelope(w, http.StatusNotFound, "Please provide the name of the recipe you are looking for", nil)
		return
	}

	res := h.book.GetByName(r.Context(), name)
	switch res.Status {
	case cookbook.StatusFound:
		utils.WriteEnvelope(w, http.StatusOK, res.Message, res.Recipe)
	case cookbook.StatusNotFound:
		utils.WriteEnvelope(w, http.StatusNotFound, res.Message, nil)
	default:
		utils.WriteEnvelope(w, http.StatusInternalServerError, res.Message, nil)
	}
}

// Create answers POST /addrecipe. The body is the recipe document itself;
// the password field is consumed by the middleware and ignored here.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var recipe models.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		h.log.Debug("unreadable add payload", zap.Error(err))
		utils.WriteEnvelope(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	res := h.book.Add(r.Context(), recipe)
	switch res.Status {
	case cookbook.StatusCreated:
		h.cache.Invalidate(r.Context())
		utils.WriteEnvelope(w, http.StatusCreated, res.Message, nil)
	case cookbook.StatusStorageFailure:
		utils.WriteEnvelope(w, http.StatusInternalServerError, res.Message, nil)
	default:
		utils.WriteEnvelope(w, http.StatusBadRequest, res.Message, nil)
	}
}

// Remove answers PUT /removerecipe and DELETE /deleterecipe, returning the
// removed recipe's snapshot on success.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		utils.WriteEnvelope(w, http.StatusBadRequest, "Please provide name of the recipe you want to remove", nil)
		return
	}

	res := h.book.Remove(r.Context(), req.Name)
	switch res.Status {
	case cookbook.StatusDeleted:
		h.cache.Invalidate(r.Context())
		utils.WriteEnvelope(w, http.StatusOK, res.Message, res.Recipe)
	case cookbook.StatusStorageFailure:
		utils.WriteEnvelope(w, http.StatusInternalServerError, res.Message, nil)
	default:
		utils.WriteEnvelope(w, http.StatusBadRequest, res.Message, nil)
	}
}

// Edit answers PUT /editrecipe with {name, recipe}. Every failure outcome
// maps to 400; a failed compensation is additionally logged by the
// repository as live data loss.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name   string         `json:"name"`
		Recipe *models.Recipe `json:"recipe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteEnvelope(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		utils.WriteEnvelope(w, http.StatusBadRequest, "Please provide name of the recipe you want to edit", nil)
		return
	}
	if req.Recipe == nil {
		utils.WriteEnvelope(w, http.StatusBadRequest, "Please provide new information you want to edit the recipe with", nil)
		return
	}

	res := h.book.Edit(r.Context(), req.Name, *req.Recipe)
	switch res.Status {
	case cookbook.StatusUpdated:
		h.cache.Invalidate(r.Context())
		utils.WriteEnvelope(w, http.StatusOK, res.Message, nil)
	case cookbook.StatusStorageFailure:
		utils.WriteEnvelope(w, http.StatusInternalServerError, res.Message, nil)
	case cookbook.StatusCriticalInconsistency:
		// The recipe is gone; the caller sees an ordinary failure while
		// the repository has already screamed about it in the logs.
		h.cache.Invalidate(r.Context())
		utils.WriteEnvelope(w, http.StatusBadRequest, res.Message, nil)
	default:
		utils.WriteEnvelope(w, http.StatusBadRequest, res.Message, nil)
	}
}

// Health is a simple liveness probe.
func Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
