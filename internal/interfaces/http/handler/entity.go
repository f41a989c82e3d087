package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/erp/erpcore/internal/application/crud"
	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// InventoryEntity is the entity served by the upsert endpoint
const InventoryEntity = "inventory"

// DefaultMaxBodySize applies to JSON bodies when no limit is configured
const DefaultMaxBodySize int64 = 1 << 20

// EntityHandler serves the generic CRUD endpoints of every registered entity
type EntityHandler struct {
	BaseHandler
	engine      *crud.Engine
	maxBodySize int64
}

// NewEntityHandler creates a new EntityHandler. maxBodySize of zero or less
// means DefaultMaxBodySize.
func NewEntityHandler(engine *crud.Engine, maxBodySize int64) *EntityHandler {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &EntityHandler{engine: engine, maxBodySize: maxBodySize}
}

// RegisterRoutes mounts the entity routes on rg
func (h *EntityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	limit := middleware.BodyLimit(h.maxBodySize)

	rg.POST("/"+InventoryEntity+"/upsert", limit, h.UpsertInventory)
	rg.GET("/:entity", h.List)
	rg.POST("/:entity", limit, h.Create)
	rg.GET("/:entity/:id", h.Get)
	rg.PUT("/:entity/:id", limit, h.Update)
	rg.DELETE("/:entity/:id", h.Delete)
}

// List handles GET /{entity}: list records of an entity ordered by id
func (h *EntityHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page := h.engine.Limits().Normalize(shared.Page{Offset: req.Skip, Limit: req.Limit})
	records, err := h.engine.List(c.Request.Context(), c.Param("entity"), page)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, page.Offset, page.Limit, len(records))
}

// Get handles GET /{entity}/{id}: get one record by id
func (h *EntityHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	rec, err := h.engine.Get(c.Request.Context(), c.Param("entity"), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Create handles POST /{entity}: create a record from a JSON object
func (h *EntityHandler) Create(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	rec, err := h.engine.Create(c.Request.Context(), c.Param("entity"), fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rec)
}

// Update handles PUT /{entity}/{id}: update the fields present in the JSON object
func (h *EntityHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	rec, err := h.engine.Update(c.Request.Context(), c.Param("entity"), id, fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Delete handles DELETE /{entity}/{id}: delete a record by id
func (h *EntityHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	name := c.Param("entity")
	deleted, err := h.engine.Delete(c.Request.Context(), name, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !deleted {
		h.HandleError(c, shared.NotFound(name, id))
		return
	}
	h.Success(c, gin.H{"id": id, "deleted": true})
}

// UpsertInventory handles POST /inventory/upsert: add quantity to the
// inventory row of a product and warehouse
func (h *EntityHandler) UpsertInventory(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	rec, created, err := h.engine.Upsert(c.Request.Context(), InventoryEntity, fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.UpsertResponse{Created: created, Record: rec}
	if created {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// parseID reads the :id path parameter. It answers the request itself when
// the entity is unknown or the id malformed.
func (h *EntityHandler) parseID(c *gin.Context) (int64, bool) {
	if _, err := h.engine.Registry().Describe(c.Param("entity")); err != nil {
		h.HandleError(c, err)
		return 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.HandleError(c, shared.Validation("id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// bindFields decodes the request body as one JSON object. Numbers keep
// their literal form so decimals are not rounded through float64.
func (h *EntityHandler) bindFields(c *gin.Context) (crud.Fields, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields crud.Fields
	if err := dec.Decode(&fields); err != nil || fields == nil {
		h.BadRequest(c, "request body must be a JSON object")
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		h.BadRequest(c, "request body must hold a single JSON object")
		return nil, false
	}
	return fields, true
}
