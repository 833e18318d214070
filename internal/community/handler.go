package community

import (
	"context"
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
	case errors.Is(err, ErrCommunityNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "community not found"})
	case errors.Is(err, ErrPostNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "post not found"})
	case errors.Is(err, ErrCommentNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "comment not found"})
	case errors.Is(err, ErrNotMember):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrNotAClient):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "user not found"})
	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// @Summary      Create a community
// @Tags         communities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body community.CommunityRequest true "Community"
// @Success      201 {object} community.Community
// @Router       /api/communities [post]
func (h *Handler) Create(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	var req CommunityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	community, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, community)
}

// @Summary      List my communities
// @Tags         communities
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} community.Community
// @Router       /api/communities [get]
func (h *Handler) ListMine(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Add a community member
// @Tags         communities
// @Security     BearerAuth
// @Accept       json
// @Param        id      path int                        true "Community ID"
// @Param        request body community.AddMemberRequest true "Member"
// @Success      204
// @Router       /api/communities/{id}/members [post]
func (h *Handler) AddMember(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req AddMemberRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.AddMember(c.Request.Context(), p, id, req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      List community members
// @Tags         communities
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Community ID"
// @Success      200 {array} community.Member
// @Router       /api/communities/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	list, err := h.service.ListMembers(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Remove a community member
// @Description  Owners remove anyone; members may remove themselves.
// @Tags         communities
// @Security     BearerAuth
// @Param        id     path int true "Community ID"
// @Param        userID path int true "User ID"
// @Success      204
// @Router       /api/communities/{id}/members/{userID} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	userID, ok := api.ParamID(c, "userID")
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), p, id, userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Create a post
// @Tags         communities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int                   true "Community ID"
// @Param        request body community.PostRequest true "Post"
// @Success      201 {object} community.Post
// @Router       /api/communities/{id}/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	var req PostRequest
	if !api.BindJSON(c, &req) {
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), p, id, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// @Summary      List posts
// @Description  Newest first, with like and comment counts.
// @Tags         communities
// @Security     BearerAuth
// @Produce      json
// @Param        id     path  int true  "Community ID"
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Offset"
// @Success      200 {object} api.ListResponse[community.Post]
// @Router       /api/communities/{id}/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}
	limit, offset := api.Pagination(c)

	items, total, err := h.service.ListPosts(c.Request.Context(), p, id, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListResponse[Post]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// @Summary      Delete a post
// @Tags         communities
// @Security     BearerAuth
// @Param        postID path int true "Post ID"
// @Success      204
// @Router       /api/posts/{postID} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	postID, ok := api.ParamID(c, "postID")
	if !ok {
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), p, postID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Comment on a post
// @Description  A reply to a reply is attached to the top-level comment.
// @Tags         communities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        postID  path int                      true "Post ID"
// @Param        request body community.CommentRequest true "Comment"
// @Success      201 {object} community.Comment
// @Router       /api/posts/{postID}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	postID, ok := api.ParamID(c, "postID")
	if !ok {
		return
	}
	var req CommentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), p, postID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// @Summary      List comments
// @Tags         communities
// @Security     BearerAuth
// @Produce      json
// @Param        postID path int true "Post ID"
// @Success      200 {array} community.Comment
// @Router       /api/posts/{postID}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	postID, ok := api.ParamID(c, "postID")
	if !ok {
		return
	}

	list, err := h.service.ListComments(c.Request.Context(), p, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Delete a comment
// @Tags         communities
// @Security     BearerAuth
// @Param        commentID path int true "Comment ID"
// @Success      204
// @Router       /api/comments/{commentID} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	commentID, ok := api.ParamID(c, "commentID")
	if !ok {
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), p, commentID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Like a post
// @Tags         communities
// @Security     BearerAuth
// @Produce      json
// @Param        postID path int true "Post ID"
// @Success      200 {object} community.LikeResponse
// @Router       /api/posts/{postID}/like [post]
func (h *Handler) Like(c *gin.Context) {
	h.like(c, h.service.Like)
}

// @Summary      Unlike a post
// @Tags         communities
// @Security     BearerAuth
// @Produce      json
// @Param        postID path int true "Post ID"
// @Success      200 {object} community.LikeResponse
// @Router       /api/posts/{postID}/like [delete]
func (h *Handler) Unlike(c *gin.Context) {
	h.like(c, h.service.Unlike)
}

func (h *Handler) like(c *gin.Context, fn func(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error)) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	postID, ok := api.ParamID(c, "postID")
	if !ok {
		return
	}

	res, err := fn(c.Request.Context(), p, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
