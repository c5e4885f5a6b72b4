package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"societyhub/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Email       string    `gorm:"column:email;not null;uniqueIndex"`
	Phone       *string   `gorm:"column:phone"`
	Role        string    `gorm:"column:role;type:varchar(16);not null;index"`
	ApartmentID *int64    `gorm:"column:apartment_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       strVal(m.Phone),
		Role:        domain.UserRole(m.Role),
		ApartmentID: m.ApartmentID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := userModel{
		Name:        u.Name,
		Email:       strings.ToLower(strings.TrimSpace(u.Email)),
		Phone:       strPtr(u.Phone),
		Role:        string(u.Role),
		ApartmentID: u.ApartmentID,
	}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("email %q is already registered", m.Email)
		}
		return err
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := conn(ctx, r.db).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
		}
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) List(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	q := conn(ctx, r.db).Model(&userModel{})
	if role != "" {
		q = q.Where("role = ?", string(role))
	}
	var rows []userModel
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}
