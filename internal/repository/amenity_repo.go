package repository

import (
	"context"
	"time"

	"societyhub/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AmenityRepository struct {
	db *gorm.DB
}

func NewAmenityRepository(db *gorm.DB) *AmenityRepository {
	return &AmenityRepository{db: db}
}

type amenityModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	Description *string   `gorm:"column:description;type:text"`
	OpenTime    *string   `gorm:"column:open_time;type:varchar(5)"`
	CloseTime   *string   `gorm:"column:close_time;type:varchar(5)"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (amenityModel) TableName() string { return "amenities" }

func toDomainAmenity(m amenityModel) *domain.Amenity {
	return &domain.Amenity{
		ID:          m.ID,
		Name:        m.Name,
		Description: strVal(m.Description),
		OpenTime:    strVal(m.OpenTime),
		CloseTime:   strVal(m.CloseTime),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *AmenityRepository) Create(ctx context.Context, a *domain.Amenity) error {
	m := amenityModel{
		Name:        a.Name,
		Description: strPtr(a.Description),
		OpenTime:    strPtr(a.OpenTime),
		CloseTime:   strPtr(a.CloseTime),
		IsActive:    a.IsActive,
	}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("amenity %q already exists", a.Name)
		}
		return err
	}
	*a = *toDomainAmenity(m)
	return nil
}

func (r *AmenityRepository) GetByID(ctx context.Context, id int64) (*domain.Amenity, error) {
	var m amenityModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, "amenity", id)
	}
	return toDomainAmenity(m), nil
}

// GetForUpdate loads the amenity holding a row lock for the rest of the
// surrounding transaction. Booking writes for one amenity serialise on it.
// SQLite ignores the locking clause; its single writer connection already
// serialises.
func (r *AmenityRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Amenity, error) {
	var m amenityModel
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, notFound(err, "amenity", id)
	}
	return toDomainAmenity(m), nil
}

func (r *AmenityRepository) List(ctx context.Context, activeOnly bool) ([]domain.Amenity, error) {
	q := conn(ctx, r.db).Model(&amenityModel{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []amenityModel
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Amenity, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAmenity(m))
	}
	return out, nil
}
