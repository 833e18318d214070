package user

import (
	"errors"
	"net/http"

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
	case errors.Is(err, ErrEmailExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "email already registered"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNotAClient):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "user not found"})
	case errors.Is(err, api.ErrForbidden):
		api.Forbidden(c)
	default:
		api.InternalError(c, err)
	}
}

// Register godoc
// @Summary      Register new user
// @Description  Creates an instructor (default) or client account and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "User registration data"
// @Success      201      {object}  LoginResponse
// @Failure      400      {object}  api.ValidationErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, access, refresh, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{AccessToken: access, RefreshToken: refresh, User: *user})
}

// Login godoc
// @Summary      Login user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "User credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ValidationErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, access, refresh, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{AccessToken: access, RefreshToken: refresh, User: *user})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token payload"
// @Success      200      {object}  RefreshResponse
// @Failure      400      {object}  api.ValidationErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /api/auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !api.BindJSON(c, &req) {
		return
	}

	access, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{AccessToken: access, User: *user})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateClient godoc
// @Summary      Create a client account
// @Description  Instructor-only: creates a client coached by the caller.
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClientRequest  true  "Client data"
// @Success      201      {object}  User
// @Failure      400      {object}  api.ValidationErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /api/clients [post]
func (h *Handler) CreateClient(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	var req CreateClientRequest
	if !api.BindJSON(c, &req) {
		return
	}

	client, err := h.service.CreateClient(c.Request.Context(), p.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// ListClients godoc
// @Summary      List my clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  User
// @Router       /api/clients [get]
func (h *Handler) ListClients(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	clients, err := h.service.ListClients(c.Request.Context(), p.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary      Get a client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        clientID  path  int  true  "Client ID"
// @Success      200  {object}  User
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/clients/{clientID} [get]
func (h *Handler) GetClient(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	clientID, ok := api.ParamID(c, "clientID")
	if !ok {
		return
	}

	client, err := h.service.GetClient(c.Request.Context(), p, clientID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}
