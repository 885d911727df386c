package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-backend/dishes-service/services"
	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/clients"
	"restaurant-backend/shared/database/repositories"
	"restaurant-backend/shared/utils/permission"
	"restaurant-backend/shared/utils/response"
)

var resourceStatus = apperr.StatusTable{
	apperr.NotFound:            http.StatusNotFound,
	apperr.Validation:          http.StatusBadRequest,
	apperr.UnsupportedLanguage: http.StatusBadRequest,
}

// ResourceHandler serves list, retrieve, create, update, partial update and destroy
// for one resource stored in a repositories.Store.
type ResourceHandler[T any] struct {
	name           string
	store          repositories.Store[T]
	allowPatch     bool
	translator     *services.TranslationService
	listFields     services.Fields[T]
	retrieveFields services.Fields[T]
	log            zerolog.Logger
}

// Option configures a ResourceHandler.
type Option[T any] func(*ResourceHandler[T])

// WithPartialUpdate lets PATCH merge the body into the stored record instead of answering 405.
func WithPartialUpdate[T any]() Option[T] {
	return func(h *ResourceHandler[T]) { h.allowPatch = true }
}

// WithTranslation translates the given fields on list and retrieve when ?lang= asks for it.
// A nil Fields leaves that operation untranslated.
func WithTranslation[T any](svc *services.TranslationService, list, retrieve services.Fields[T]) Option[T] {
	return func(h *ResourceHandler[T]) {
		h.translator = svc
		h.listFields = list
		h.retrieveFields = retrieve
	}
}

func NewResourceHandler[T any](name string, store repositories.Store[T], log zerolog.Logger, opts ...Option[T]) *ResourceHandler[T] {
	h := &ResourceHandler[T]{
		name:  name,
		store: store,
		log:   log.With().Str("resource", name).Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the resource under r/<name>, behind the gate.
func (h *ResourceHandler[T]) Register(r gin.IRouter, gate *permission.Gate) *gin.RouterGroup {
	group := r.Group("/"+h.name, gate.Resource(h.name))
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Retrieve)
	group.PUT("/:id", h.Update)
	group.PATCH("/:id", h.PartialUpdate)
	group.DELETE("/:id", h.Destroy)
	return group
}

func (h *ResourceHandler[T]) List(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	if !h.translate(c, items, h.listFields) {
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ResourceHandler[T]) Retrieve(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	item, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	items := []T{*item}
	if !h.translate(c, items, h.retrieveFields) {
		return
	}
	c.JSON(http.StatusOK, items[0])
}

func (h *ResourceHandler[T]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Create(ctx, &item); err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	h.respondWithStored(c, http.StatusCreated, &item)
}

func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Update(c.Request.Context(), id, &item); err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	h.respondWithStored(c, http.StatusOK, &item)
}

func (h *ResourceHandler[T]) PartialUpdate(c *gin.Context) {
	if !h.allowPatch {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	item, err := h.store.Get(ctx, id)
	if err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	// Fields missing from the body keep their stored values.
	if err := c.ShouldBindJSON(item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Update(ctx, id, item); err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	h.respondWithStored(c, http.StatusOK, item)
}

func (h *ResourceHandler[T]) Destroy(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return
	}

	h.log.Info().Int64("id", id).Msg("record deleted")
	c.Status(http.StatusNoContent)
}

// respondWithStored re-reads item so the response carries what the database holds.
func (h *ResourceHandler[T]) respondWithStored(c *gin.Context, status int, item *T) {
	stored := item
	if rec, ok := any(item).(interface{ GetID() int64 }); ok {
		fresh, err := h.store.Get(c.Request.Context(), rec.GetID())
		if err != nil {
			response.Error(c, resourceStatus, err, h.log)
			return
		}
		stored = fresh
	}
	c.JSON(status, stored)
}

// translate applies ?lang= to items. It writes the error response and returns false on failure.
func (h *ResourceHandler[T]) translate(c *gin.Context, items []T, fields services.Fields[T]) bool {
	if h.translator == nil || fields == nil {
		return true
	}

	lang, err := clients.NormalizeLanguage(c.Query("lang"))
	if err == nil {
		err = services.Translate(c.Request.Context(), h.translator, lang, items, fields)
	}
	if err != nil {
		response.Error(c, resourceStatus, err, h.log)
		return false
	}
	return true
}

func (h *ResourceHandler[T]) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, resourceStatus, apperr.New(apperr.NotFound, "Not found."), h.log)
		return 0, false
	}
	return id, true
}
