package account

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/radassist/radassist/internal/platform/auth"
	"github.com/radassist/radassist/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)

	api.GET("/me", h.Me)

	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/users", h.ListAccounts)
	admin.GET("/users/:id", h.GetAccount)
	admin.PUT("/users/:id/role", h.ChangeRole)
	admin.PUT("/users/:id/active", h.SetActive)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        *Account `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	token, a, err := h.svc.Authenticate(c.Request().Context(), in.Username, in.Password)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer", User: a})
}

func (h *Handler) Me(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	a, err := h.svc.Get(c.Request().Context(), p.AccountID)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAccounts(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), p, c.QueryParam("role"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

func (h *Handler) ChangeRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in roleUpdateRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	a, err := h.svc.ChangeRole(c.Request().Context(), p, id, in.Role)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

type activeUpdateRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SetActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in activeUpdateRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	a, err := h.svc.SetActive(c.Request().Context(), p, id, in.Active)
	if err != nil {
		return echo.NewHTTPError(apperr.StatusCode(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}
