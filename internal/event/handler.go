package event

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
	case errors.Is(err, ErrEventNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "event not found"})
	case errors.Is(err, ErrNotRegistered):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrEventFull), errors.Is(err, ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrRegistrationClosed), errors.Is(err, ErrEventCancelled):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Create an event
// @Tags         events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body event.EventRequest true "Event"
// @Success      201 {object} event.Event
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/events [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var req EventRequest
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

// @Summary      List events
// @Description  Upcoming events by default; mine=true lists the instructor's own events.
// @Tags         events
// @Security     BearerAuth
// @Produce      json
// @Param        mine   query bool false "Only my events"
// @Param        limit  query int  false "Page size"
// @Param        offset query int  false "Offset"
// @Success      200 {object} api.ListResponse[event.Event]
// @Router       /api/events [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	mine, _ := strconv.ParseBool(c.Query("mine"))
	limit, offset := api.Pagination(c)

	items, total, err := h.service.List(c.Request.Context(), p, mine, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Event]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Get an event
// @Tags         events
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {object} event.Event
// @Router       /api/events/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Update an event
// @Tags         events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                true "Event ID"
// @Param        request body event.EventRequest true "Event"
// @Success      200 {object} event.Event
// @Router       /api/events/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req EventRequest
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

// @Summary      Cancel an event
// @Tags         events
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      204
// @Router       /api/events/{id} [delete]
func (h *Handler) Cancel(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Register for an event
// @Description  Lands on the waitlist when the event is full and waitlisting is allowed.
// @Tags         events
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      201 {object} event.Registration
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /api/events/{id}/register [post]
func (h *Handler) Register(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	reg, err := h.service.Register(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// @Summary      Cancel my registration
// @Tags         events
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      204
// @Router       /api/events/{id}/register [delete]
func (h *Handler) Unregister(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Unregister(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      List event registrations
// @Tags         events
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Event ID"
// @Success      200 {array} event.Attendee
// @Router       /api/events/{id}/registrations [get]
func (h *Handler) ListAttendees(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	list, err := h.service.ListAttendees(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
