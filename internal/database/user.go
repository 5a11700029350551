package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monjez/monjez/internal/usecase"
)

type User struct {
	ID           uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name         string    `gorm:"column:name"`
	NameAr       string    `gorm:"column:name_ar"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	Role         string    `gorm:"column:role;type:varchar(32);default:MEMBER"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	DeletedAt    *gorm.DeletedAt
}

func (User) TableName() string {
	return "users"
}

func (u User) ConvertToUsecase() usecase.User {
	var d *time.Time
	if u.DeletedAt != nil {
		d = &u.DeletedAt.Time
	}
	return usecase.User{
		ID:           u.ID,
		Name:         u.Name,
		NameAr:       u.NameAr,
		Email:        u.Email,
		Role:         usecase.UserRole(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		DeletedAt:    d,
	}
}

func (s *service) ListUsers(ctx context.Context, opt usecase.ListUsersOption) ([]usecase.User, int, error) {
	var (
		users []User
		count int64
	)

	db := s.db.Model([]User{}).WithContext(ctx)

	if opt.Name != "" {
		db = db.Where("name ILIKE ?", "%"+opt.Name+"%")
	}
	if opt.Email != "" {
		db = db.Where("email = ?", opt.Email)
	}

	orderIn := "desc"
	if opt.SortIn != "" {
		orderIn = opt.SortIn
	}
	orderBy := "created_at"
	if opt.SortBy != "" {
		orderBy = opt.SortBy
	}

	err := db.
		Count(&count).
		Order(orderBy + " " + orderIn).
		Limit(opt.Limit).
		Offset(opt.Skip).
		Find(&users).
		Error
	if err != nil {
		return nil, 0, err
	}

	list := make([]usecase.User, 0, len(users))
	for _, u := range users {
		list = append(list, u.ConvertToUsecase())
	}
	return list, int(count), nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (usecase.User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return usecase.User{}, err
	}
	return u.ConvertToUsecase(), nil
}

func (s *service) GetUserByEmail(ctx context.Context, email string) (usecase.User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return usecase.User{}, err
	}
	return u.ConvertToUsecase(), nil
}

func (s *service) CreateUser(ctx context.Context, user usecase.User) (usecase.User, error) {
	u := User{
		Name:         user.Name,
		NameAr:       user.NameAr,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return usecase.User{}, err
	}
	return u.ConvertToUsecase(), nil
}

func (s *service) UpdateUser(ctx context.Context, user usecase.User) (usecase.User, error) {
	u := User{
		ID:           user.ID,
		Name:         user.Name,
		NameAr:       user.NameAr,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
	}
	if err := s.db.WithContext(ctx).Updates(&u).Error; err != nil {
		return usecase.User{}, err
	}
	return s.GetUserByID(ctx, user.ID)
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&User{}, id).Error
}
