package session

import (
	"errors"
	"net/http"
	"strconv"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/clientprogram"
	"fitcoach/internal/user"

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
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "session not found"})
	case errors.Is(err, ErrExerciseNotInSession):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "exercise not in session"})
	case errors.Is(err, clientprogram.ErrClientProgramNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client program not found"})
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrNotAClient):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client not found"})
	case errors.Is(err, ErrKudosExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrSessionFinished), errors.Is(err, ErrSessionNotFinished), errors.Is(err, ErrProgramInactive):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Start a workout session
// @Description  Seeds the session with the client program's effective exercises.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Client program ID"
// @Success      201 {object} session.Session
// @Failure      422 {object} api.ErrorResponse
// @Router       /api/client-programs/{id}/sessions [post]
func (h *Handler) Start(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.Start(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// @Summary      List sessions
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        client_id query int false "Client ID (required for instructors)"
// @Param        limit     query int false "Page size"
// @Param        offset    query int false "Offset"
// @Success      200 {object} api.ListResponse[session.Session]
// @Router       /api/sessions [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var clientID int
	if raw := c.Query("client_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid client_id"})
			return
		}
		clientID = id
	}
	limit, offset := api.Pagination(c)

	items, total, err := h.service.List(c.Request.Context(), p, clientID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Session]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Get a session
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Session ID"
// @Success      200 {object} session.Session
// @Router       /api/sessions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Record progress on a session exercise
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path int                           true "Session ID"
// @Param        exerciseID path int                           true "Exercise ID"
// @Param        request    body session.RecordExerciseRequest true "Progress"
// @Success      200 {object} session.Exercise
// @Failure      422 {object} api.ErrorResponse
// @Router       /api/sessions/{id}/exercises/{exerciseID} [put]
func (h *Handler) RecordExercise(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	exerciseID, ok := api.ParamID(c, "exerciseID")
	if !ok {
		return
	}
	var req RecordExerciseRequest
	if !api.BindJSON(c, &req) {
		return
	}

	e, err := h.service.RecordExercise(c.Request.Context(), p, id, exerciseID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Finish a session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                   true  "Session ID"
// @Param        request body session.FinishRequest false "Notes"
// @Success      200 {object} session.Session
// @Failure      422 {object} api.ErrorResponse
// @Router       /api/sessions/{id}/finish [post]
func (h *Handler) Finish(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req FinishRequest
	if c.Request.ContentLength != 0 && !api.BindJSON(c, &req) {
		return
	}

	s, err := h.service.Finish(c.Request.Context(), p, id, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Give kudos for a finished session
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                  true "Session ID"
// @Param        request body session.KudosRequest true "Message"
// @Success      201 {object} session.Kudos
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/sessions/{id}/kudos [post]
func (h *Handler) GiveKudos(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req KudosRequest
	if c.Request.ContentLength != 0 && !api.BindJSON(c, &req) {
		return
	}

	k, err := h.service.GiveKudos(c.Request.Context(), p, id, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, k)
}
