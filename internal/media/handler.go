package media

import (
	"errors"
	"net/http"

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
	case errors.Is(err, ErrMediaNotFound), errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "media not found"})
	case errors.Is(err, ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Request a media upload
// @Description  Stores the metadata and returns a presigned PUT URL for the file itself.
// @Tags         media
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body media.UploadRequest true "Upload"
// @Success      201 {object} media.UploadResponse
// @Failure      413 {object} api.ErrorResponse
// @Router       /api/media [post]
func (h *Handler) CreateUpload(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var req UploadRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.service.CreateUpload(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// @Summary      List media
// @Tags         media
// @Security     BearerAuth
// @Produce      json
// @Param        kind   query string false "IMAGE, VIDEO or DOCUMENT"
// @Param        limit  query int    false "Page size"
// @Param        offset query int    false "Offset"
// @Success      200 {object} api.ListResponse[media.Media]
// @Router       /api/media [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	kind := c.Query("kind")
	switch kind {
	case "", KindImage, KindVideo, KindDocument:
	default:
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid kind"})
		return
	}
	limit, offset := api.Pagination(c)

	items, total, err := h.service.List(c.Request.Context(), p, ListFilter{Kind: kind, Limit: limit, Offset: offset})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Media]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Get media
// @Description  Includes a short-lived download URL.
// @Tags         media
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Media ID"
// @Success      200 {object} media.Media
// @Router       /api/media/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Delete media
// @Tags         media
// @Security     BearerAuth
// @Param        id path int true "Media ID"
// @Success      204
// @Router       /api/media/{id} [delete]
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
