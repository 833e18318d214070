package schedule

import (
	"context"
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
	case errors.Is(err, ErrScheduledNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "scheduled program not found"})
	case errors.Is(err, clientprogram.ErrClientProgramNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client program not found"})
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrNotAClient):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client not found"})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Schedule a client program on explicit dates
// @Description  Duplicate dates in the request collapse to one occurrence.
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                   true "Client program ID"
// @Param        request body schedule.DatesRequest true "Dates"
// @Success      201 {array} schedule.ScheduledProgram
// @Failure      400 {object} api.ErrorResponse
// @Router       /api/client-programs/{id}/schedule [post]
func (h *Handler) ScheduleDates(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req DatesRequest
	if !api.BindJSON(c, &req) {
		return
	}

	list, err := h.service.ScheduleDates(c.Request.Context(), p, id, req.Dates)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// @Summary      Schedule a client program weekly
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                    true "Client program ID"
// @Param        request body schedule.WeeklyRequest true "Weekday (0 = Sunday) and number of weeks"
// @Success      201 {array} schedule.ScheduledProgram
// @Router       /api/client-programs/{id}/schedule/weekly [post]
func (h *Handler) ScheduleWeekly(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req WeeklyRequest
	if !api.BindJSON(c, &req) {
		return
	}

	list, err := h.service.ScheduleWeekly(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// @Summary      List scheduled programs
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        client_id         query int    false "Client ID"
// @Param        client_program_id query int    false "Client program ID"
// @Param        from              query string false "From date (YYYY-MM-DD)"
// @Param        to                query string false "To date (YYYY-MM-DD)"
// @Success      200 {array} schedule.ScheduledProgram
// @Router       /api/scheduled-programs [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	var f ListFilter
	var err error
	for name, dst := range map[string]*int{"client_id": &f.ClientID, "client_program_id": &f.ClientProgramID} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		if *dst, err = strconv.Atoi(raw); err != nil || *dst <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + name})
			return
		}
	}
	if f.From, err = api.QueryDate(c, "from"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from date"})
		return
	}
	if f.To, err = api.QueryDate(c, "to"); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to date"})
		return
	}

	list, err := h.service.List(c.Request.Context(), p, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Mark a scheduled program completed
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Scheduled program ID"
// @Success      200 {object} schedule.ScheduledProgram
// @Router       /api/scheduled-programs/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	h.mutate(c, h.service.Complete)
}

// @Summary      Clear a scheduled program's completion
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Scheduled program ID"
// @Success      200 {object} schedule.ScheduledProgram
// @Router       /api/scheduled-programs/{id}/uncomplete [post]
func (h *Handler) Uncomplete(c *gin.Context) {
	h.mutate(c, h.service.Uncomplete)
}

// @Summary      Update scheduled program notes
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                   true "Scheduled program ID"
// @Param        request body schedule.NotesRequest true "Notes"
// @Success      200 {object} schedule.ScheduledProgram
// @Router       /api/scheduled-programs/{id} [put]
func (h *Handler) UpdateNotes(c *gin.Context) {
	var req NotesRequest
	h.mutate(c, func(ctx context.Context, p auth.Principal, id int) (*ScheduledProgram, error) {
		if !api.BindJSON(c, &req) {
			return nil, nil
		}
		return h.service.UpdateNotes(ctx, p, id, req.Notes)
	})
}

func (h *Handler) mutate(c *gin.Context, fn func(context.Context, auth.Principal, int) (*ScheduledProgram, error)) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	sp, err := fn(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if sp == nil {
		return
	}
	c.JSON(http.StatusOK, sp)
}

// @Summary      Delete a scheduled program
// @Tags         schedule
// @Security     BearerAuth
// @Param        id path int true "Scheduled program ID"
// @Success      204
// @Router       /api/scheduled-programs/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
