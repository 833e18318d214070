package notification

import (
	"errors"
	"net/http"
	"strconv"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
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
	case errors.Is(err, ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "notification not found"})
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrNotAClient):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "client not found"})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      List my notifications
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        unread  query bool false "Only unread"
// @Param        limit   query int  false "Page size"
// @Param        offset  query int  false "Offset"
// @Success      200 {object} api.ListResponse[notification.Notification]
// @Router       /api/notifications [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	limit, offset := api.Pagination(c)
	unread, _ := strconv.ParseBool(c.Query("unread"))

	items, total, err := h.service.List(c.Request.Context(), p.UserID, unread, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Notification]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Count unread notifications
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} api.CountResponse
// @Router       /api/notifications/unread-count [get]
func (h *Handler) UnreadCount(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	n, err := h.service.UnreadCount(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

// @Summary      Mark a notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} notification.Notification
// @Failure      404 {object} api.ErrorResponse
// @Router       /api/notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), p.UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary      Mark all notifications as read
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} notification.MarkAllResponse
// @Router       /api/notifications/read-all [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MarkAllResponse{Updated: updated})
}

// @Summary      Nudge a client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        clientID path int                       true "Client ID"
// @Param        request  body notification.NudgeRequest true "Message"
// @Success      201 {object} notification.Notification
// @Failure      403 {object} api.ErrorResponse
// @Router       /api/clients/{clientID}/nudge [post]
func (h *Handler) Nudge(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := api.ParamID(c, "clientID")
	if !ok {
		return
	}
	var req NudgeRequest
	if !api.BindJSON(c, &req) {
		return
	}

	n, err := h.service.Nudge(c.Request.Context(), p, clientID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}
