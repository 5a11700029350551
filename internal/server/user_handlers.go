package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/usecase"
)

type User struct {
	ID        string `json:"id" param:"id"`
	Name      string `json:"name" validate:"required"`
	NameAr    string `json:"name_ar,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN MANAGER MEMBER"`
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func ConvertUserFrom(u usecase.User) User {
	return User{
		ID:        u.ID.String(),
		Name:      u.Name,
		NameAr:    u.NameAr,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

type ListUsersRequest struct {
	Skip   int    `query:"skip"`
	Limit  int    `query:"limit" validate:"required,gte=1,lte=100"`
	SortBy string `query:"sort_by" validate:"omitempty,oneof=created_at updated_at name email"`
	SortIn string `query:"sort_in" validate:"omitempty,oneof=asc desc"`
	Name   string `query:"name" validate:"omitempty"`
	Email  string `query:"email" validate:"omitempty"`
}

func (s *Server) ListUsers(ctx echo.Context) error {
	var req ListUsersRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	users, total, err := s.server.ListUsers(ctx.Request().Context(), usecase.ListUsersOption{
		Skip:   req.Skip,
		Limit:  req.Limit,
		Name:   req.Name,
		Email:  req.Email,
		SortBy: req.SortBy,
		SortIn: req.SortIn,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]User, 0, len(users))
	for _, u := range users {
		list = append(list, ConvertUserFrom(u))
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			Total: total,
			Skip:  req.Skip,
			Limit: req.Limit,
		},
	})
}

type GetUserByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetUserByID(ctx echo.Context) error {
	var req GetUserByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	u, err := s.server.GetUserByID(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertUserFrom(u)})
}

func (s *Server) GetMe(ctx echo.Context) error {
	u, err := s.server.GetMe(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertUserFrom(u)})
}

func (s *Server) CreateUser(ctx echo.Context) error {
	var user User
	if err := ctx.Bind(&user); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(user); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	u, err := s.server.CreateUser(ctx.Request().Context(), usecase.User{
		Name:     user.Name,
		NameAr:   user.NameAr,
		Email:    user.Email,
		Role:     usecase.UserRole(user.Role),
		Password: user.Password,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertUserFrom(u)})
}

func (s *Server) UpdateUser(ctx echo.Context) error {
	var user User
	if err := ctx.Bind(&user); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(user); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(user.ID)

	u, err := s.server.UpdateUser(ctx.Request().Context(), usecase.User{
		ID:       id,
		Name:     user.Name,
		NameAr:   user.NameAr,
		Role:     usecase.UserRole(user.Role),
		Password: user.Password,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertUserFrom(u)})
}

type DeleteUserRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteUser(ctx echo.Context) error {
	var req DeleteUserRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	if err := s.server.DeleteUser(ctx.Request().Context(), id); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "User deleted"})
}
