package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/monjez/monjez/internal/config"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleManager UserRole = "MANAGER"
	UserRoleMember  UserRole = "MEMBER"
)

type User struct {
	ID        uuid.UUID
	Name      string
	NameAr    string
	Email     string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Password is accepted on create/update and never returned; only
	// the hash is stored.
	Password     string
	PasswordHash string
}

type ListUsersOption struct {
	Skip   int
	Limit  int
	Name   string
	Email  string
	SortBy string
	SortIn string
}

func (u Usecase) ListUsers(ctx context.Context, opt ListUsersOption) ([]User, int, error) {
	return u.repo.ListUsers(ctx, opt)
}

func (u Usecase) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return u.repo.GetUserByID(ctx, id)
}

func (u Usecase) GetMe(ctx context.Context) (User, error) {
	userID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return User{}, fmt.Errorf("user id not found in context")
	}
	return u.repo.GetUserByID(ctx, userID)
}

func (u Usecase) CreateUser(ctx context.Context, user User) (User, error) {
	if user.Role == "" {
		user.Role = UserRoleMember
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.Password = ""

	created, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}

	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionCreate,
		EntityType: "USER",
		EntityID:   &created.ID,
	})

	return created, nil
}

func (u Usecase) UpdateUser(ctx context.Context, user User) (User, error) {
	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
		user.Password = ""
	}
	return u.repo.UpdateUser(ctx, user)
}

func (u Usecase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionDelete,
		EntityType: "USER",
		EntityID:   &id,
	})
	return nil
}
