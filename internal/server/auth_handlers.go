package server

import (
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/usecase"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Server) Login(ctx echo.Context) error {
	var req LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	token, u, err := s.server.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		return ctx.JSON(401, Res{Error: err.Error(), Message: "Invalid credentials"})
	}

	return ctx.JSON(200, Res{Data: LoginResponse{
		Token: token,
		User:  ConvertUserFrom(u),
	}})
}

type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required"`
	NameAr   string `json:"name_ar"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) RegisterUser(ctx echo.Context) error {
	var req RegisterUserRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	u, err := s.server.CreateUser(ctx.Request().Context(), usecase.User{
		Name:     req.Name,
		NameAr:   req.NameAr,
		Email:    req.Email,
		Role:     usecase.UserRoleMember,
		Password: req.Password,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertUserFrom(u)})
}
