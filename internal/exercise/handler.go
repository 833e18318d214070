package exercise

import (
	"errors"
	"net/http"
	"strconv"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"

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
	case errors.Is(err, ErrExerciseNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "exercise not found"})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Create an exercise
// @Tags         exercises
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body exercise.ExerciseRequest true "Exercise payload"
// @Success      201 {object} exercise.Exercise
// @Failure      400 {object} api.ValidationErrorResponse
// @Router       /api/exercises [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var req ExerciseRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// @Summary      List my exercises
// @Tags         exercises
// @Security     BearerAuth
// @Produce      json
// @Param        q                 query string false "Name search"
// @Param        location          query string false "GYM, HOME or OUTDOOR"
// @Param        include_archived  query bool   false "Include archived exercises"
// @Param        limit             query int    false "Page size"
// @Param        offset            query int    false "Offset"
// @Success      200 {object} api.ListResponse[exercise.Exercise]
// @Router       /api/exercises [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	limit, offset := api.Pagination(c)
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))
	f := ListFilter{
		Query:           c.Query("q"),
		Location:        c.Query("location"),
		IncludeArchived: includeArchived,
		Limit:           limit,
		Offset:          offset,
	}
	switch f.Location {
	case "", LocationGym, LocationHome, LocationOutdoor:
	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "location must be one of GYM, HOME, OUTDOOR"})
		return
	}

	items, total, err := h.service.List(c.Request.Context(), p, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Exercise]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Get an exercise
// @Tags         exercises
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Exercise ID"
// @Success      200 {object} exercise.Exercise
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/exercises/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Update an exercise
// @Tags         exercises
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                      true "Exercise ID"
// @Param        request body exercise.ExerciseRequest true "Exercise payload"
// @Success      200 {object} exercise.Exercise
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/exercises/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Delete an exercise
// @Description  Exercises still referenced by programs, client customizations or sessions are archived instead.
// @Tags         exercises
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Exercise ID"
// @Success      200 {object} exercise.DeleteResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/exercises/{id} [delete]
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
