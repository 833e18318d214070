package clientprogram

import (
	"errors"
	"net/http"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/exercise"
	"fitcoach/internal/program"
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
	case errors.Is(err, ErrClientProgramNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client program not found"})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "exercise not in client program"})
	case errors.Is(err, program.ErrProgramNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "program not found"})
	case errors.Is(err, exercise.ErrExerciseNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "exercise not found"})
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrNotAClient):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client not found"})
	case errors.Is(err, ErrAlreadyAssigned):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "program already assigned to client"})
	case errors.Is(err, ErrAlreadyEffective):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "exercise already in client program"})
	case errors.Is(err, program.ErrProgramArchived), errors.Is(err, exercise.ErrExerciseArchived):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Assign a program to a client
// @Description  Instructors pass client_id; clients assign a public program to themselves.
// @Tags         client-programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body clientprogram.AssignRequest true "Assignment"
// @Success      201 {object} clientprogram.ClientProgram
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/client-programs [post]
func (h *Handler) Assign(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var req AssignRequest
	if !api.BindJSON(c, &req) {
		return
	}

	cp, err := h.service.Assign(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cp)
}

// @Summary      List a client's programs
// @Tags         client-programs
// @Security     BearerAuth
// @Produce      json
// @Param        clientID path int true "Client ID"
// @Success      200 {array} clientprogram.ClientProgram
// @Router       /api/clients/{clientID}/programs [get]
func (h *Handler) ListForClient(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := api.ParamID(c, "clientID")
	if !ok {
		return
	}

	list, err := h.service.ListForClient(c.Request.Context(), p, clientID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Reorder a client's programs
// @Tags         client-programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        clientID path int                                  true "Client ID"
// @Param        request  body clientprogram.ReorderProgramsRequest true "All client program ids in order"
// @Success      200 {array} clientprogram.ClientProgram
// @Router       /api/clients/{clientID}/programs/reorder [put]
func (h *Handler) ReorderPrograms(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := api.ParamID(c, "clientID")
	if !ok {
		return
	}
	var req ReorderProgramsRequest
	if !api.BindJSON(c, &req) {
		return
	}

	list, err := h.service.ReorderPrograms(c.Request.Context(), p, clientID, req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get a client program
// @Tags         client-programs
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Client program ID"
// @Success      200 {object} clientprogram.ClientProgram
// @Router       /api/client-programs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	cp, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// @Summary      Update a client program
// @Tags         client-programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                         true "Client program ID"
// @Param        request body clientprogram.UpdateRequest true "Changes"
// @Success      200 {object} clientprogram.ClientProgram
// @Router       /api/client-programs/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !api.BindJSON(c, &req) {
		return
	}

	cp, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// @Summary      Unassign a program
// @Tags         client-programs
// @Security     BearerAuth
// @Param        id path int true "Client program ID"
// @Success      204
// @Router       /api/client-programs/{id} [delete]
func (h *Handler) Unassign(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Unassign(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Effective exercise list
// @Description  Template items merged with the client's customizations, in workout order.
// @Tags         client-programs
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Client program ID"
// @Success      200 {object} clientprogram.Effective
// @Router       /api/client-programs/{id}/effective [get]
func (h *Handler) Effective(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	eff, err := h.service.Effective(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

// @Summary      Customize an exercise for the client
// @Tags         client-programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path int                            true "Client program ID"
// @Param        exerciseID path int                            true "Exercise ID"
// @Param        request    body clientprogram.CustomizeRequest true "Overrides; null inherits"
// @Success      200 {object} clientprogram.Effective
// @Router       /api/client-programs/{id}/items/{exerciseID} [put]
func (h *Handler) CustomizeItem(c *gin.Context) {
	p, id, exerciseID, ok := itemParams(c)
	if !ok {
		return
	}
	var req CustomizeRequest
	if !api.BindJSON(c, &req) {
		return
	}

	eff, err := h.service.CustomizeItem(c.Request.Context(), p, id, exerciseID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

// @Summary      Reset an exercise to the template
// @Tags         client-programs
// @Security     BearerAuth
// @Produce      json
// @Param        id         path int true "Client program ID"
// @Param        exerciseID path int true "Exercise ID"
// @Success      200 {object} clientprogram.Effective
// @Router       /api/client-programs/{id}/items/{exerciseID} [delete]
func (h *Handler) ResetItem(c *gin.Context) {
	p, id, exerciseID, ok := itemParams(c)
	if !ok {
		return
	}

	eff, err := h.service.ResetItem(c.Request.Context(), p, id, exerciseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

// @Summary      Remove an exercise for the client
// @Tags         client-programs
// @Security     BearerAuth
// @Produce      json
// @Param        id         path int true "Client program ID"
// @Param        exerciseID path int true "Exercise ID"
// @Success      200 {object} clientprogram.Effective
// @Router       /api/client-programs/{id}/items/{exerciseID}/remove [post]
func (h *Handler) RemoveItem(c *gin.Context) {
	p, id, exerciseID, ok := itemParams(c)
	if !ok {
		return
	}

	eff, err := h.service.RemoveItem(c.Request.Context(), p, id, exerciseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

// @Summary      Restore a removed exercise
// @Tags         client-programs
// @Security     BearerAuth
// @Produce      json
// @Param        id         path int true "Client program ID"
// @Param        exerciseID path int true "Exercise ID"
// @Success      200 {object} clientprogram.Effective
// @Router       /api/client-programs/{id}/items/{exerciseID}/restore [post]
func (h *Handler) RestoreItem(c *gin.Context) {
	p, id, exerciseID, ok := itemParams(c)
	if !ok {
		return
	}

	eff, err := h.service.RestoreItem(c.Request.Context(), p, id, exerciseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

// @Summary      Add an extra exercise for the client
// @Tags         client-programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                          true "Client program ID"
// @Param        request body clientprogram.AddItemRequest true "Exercise and overrides"
// @Success      201 {object} clientprogram.Effective
// @Failure      409 {object} api.ErrorResponse
// @Router       /api/client-programs/{id}/items [post]
func (h *Handler) AddItem(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req AddItemRequest
	if !api.BindJSON(c, &req) {
		return
	}

	eff, err := h.service.AddItem(c.Request.Context(), p, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, eff)
}

// @Summary      Reorder the client's exercises
// @Tags         client-programs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                               true "Client program ID"
// @Param        request body clientprogram.ReorderItemsRequest true "Every effective exercise id in order"
// @Success      200 {object} clientprogram.Effective
// @Router       /api/client-programs/{id}/items/reorder [put]
func (h *Handler) ReorderItems(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req ReorderItemsRequest
	if !api.BindJSON(c, &req) {
		return
	}

	eff, err := h.service.ReorderItems(c.Request.Context(), p, id, req.ExerciseIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eff)
}

func itemParams(c *gin.Context) (auth.Principal, int, int, bool) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return p, 0, 0, false
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return p, 0, 0, false
	}
	exerciseID, ok := api.ParamID(c, "exerciseID")
	if !ok {
		return p, 0, 0, false
	}
	return p, id, exerciseID, true
}
