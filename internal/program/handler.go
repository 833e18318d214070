package program

import (
	"errors"
	"net/http"
	"strconv"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/exercise"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProgramNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "program not found"})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "program item not found"})
	case errors.Is(err, exercise.ErrExerciseNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrDuplicateExercise):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "exercise already in program"})
	case errors.Is(err, ErrProgramArchived), errors.Is(err, exercise.ErrExerciseArchived):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Create a program template
// @Tags         programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body program.ProgramRequest true "Program payload"
// @Success      201 {object} program.Program
// @Failure      400 {object} api.ValidationErrorResponse
// @Router       /api/programs [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var req ProgramRequest
	if !api.BindJSON(c, &req) {
		return
	}

	prog, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prog)
}

// @Summary      List programs
// @Tags         programs
// @Security     BearerAuth
// @Produce      json
// @Param        scope       query string false "all, mine or public"
// @Param        difficulty  query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param        q           query string false "Name search"
// @Param        limit       query int    false "Page size"
// @Param        offset      query int    false "Offset"
// @Success      200 {object} api.ListResponse[program.Program]
// @Router       /api/programs [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	scope := c.DefaultQuery("scope", ScopeAll)
	switch scope {
	case ScopeAll, ScopeMine, ScopePublic:
	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "scope must be one of all, mine, public"})
		return
	}
	difficulty := c.Query("difficulty")
	switch difficulty {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid difficulty"})
		return
	}

	limit, offset := api.Pagination(c)
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))
	programs, total, err := h.service.List(c.Request.Context(), p, ListFilter{
		Scope:           scope,
		Difficulty:      difficulty,
		Query:           c.Query("q"),
		IncludeArchived: includeArchived,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Program]{Items: programs, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Get a program with its items
// @Tags         programs
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Program ID"
// @Success      200 {object} program.Program
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/programs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	prog, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prog)
}

// @Summary      Update a program
// @Tags         programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                    true "Program ID"
// @Param        request body program.ProgramRequest true "Program payload"
// @Success      200 {object} program.Program
// @Router       /api/programs/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ProgramRequest
	if !api.BindJSON(c, &req) {
		return
	}

	prog, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prog)
}

// @Summary      Delete a program
// @Description  Programs already assigned to a client are archived instead.
// @Tags         programs
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Program ID"
// @Success      200 {object} program.DeleteResponse
// @Router       /api/programs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	archived, err := h.service.Delete(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{ID: id, Archived: archived})
}

// @Summary      Duplicate a program
// @Tags         programs
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Program ID"
// @Success      201 {object} program.Program
// @Router       /api/programs/{id}/duplicate [post]
func (h *Handler) Duplicate(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	prog, err := h.service.Duplicate(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prog)
}

// @Summary      Add exercises to a program
// @Tags         programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                     true "Program ID"
// @Param        request body program.AddItemsRequest true "Items"
// @Success      201 {array}  program.Item
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/programs/{id}/items [post]
func (h *Handler) AddItems(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req AddItemsRequest
	if !api.BindJSON(c, &req) {
		return
	}

	items, err := h.service.AddItems(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, items)
}

// @Summary      Update a program item
// @Tags         programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                       true "Program ID"
// @Param        itemID  path int                       true "Item ID"
// @Param        request body program.UpdateItemRequest true "Overrides"
// @Success      200 {object} program.Item
// @Router       /api/programs/{id}/items/{itemID} [put]
func (h *Handler) UpdateItem(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := api.ParamID(c, "itemID")
	if !ok {
		return
	}
	var req UpdateItemRequest
	if !api.BindJSON(c, &req) {
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), p, id, itemID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary      Remove an item from a program
// @Tags         programs
// @Security     BearerAuth
// @Param        id      path int true "Program ID"
// @Param        itemID  path int true "Item ID"
// @Success      204
// @Router       /api/programs/{id}/items/{itemID} [delete]
func (h *Handler) RemoveItem(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := api.ParamID(c, "itemID")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), p, id, itemID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Reorder program items
// @Tags         programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                    true "Program ID"
// @Param        request body program.ReorderRequest true "Every item id in the new order"
// @Success      200 {array}  program.Item
// @Router       /api/programs/{id}/items/reorder [put]
func (h *Handler) ReorderItems(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if !api.BindJSON(c, &req) {
		return
	}

	items, err := h.service.ReorderItems(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
