package repository

import (
	"context"
	"time"

	"societyhub/internal/domain"

	"gorm.io/gorm"
)

type ApartmentRepository struct {
	db *gorm.DB
}

func NewApartmentRepository(db *gorm.DB) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

type apartmentModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Block     string    `gorm:"column:block;not null;uniqueIndex:idx_apartments_unit"`
	Number    string    `gorm:"column:number;not null;uniqueIndex:idx_apartments_unit"`
	Floor     int       `gorm:"column:floor"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (apartmentModel) TableName() string { return "apartments" }

func toDomainApartment(m apartmentModel) *domain.Apartment {
	return &domain.Apartment{
		ID:        m.ID,
		Block:     m.Block,
		Number:    m.Number,
		Floor:     m.Floor,
		CreatedAt: m.CreatedAt,
	}
}

func (r *ApartmentRepository) Create(ctx context.Context, a *domain.Apartment) error {
	m := apartmentModel{Block: a.Block, Number: a.Number, Floor: a.Floor}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("apartment %s-%s already exists", a.Block, a.Number)
		}
		return err
	}
	*a = *toDomainApartment(m)
	return nil
}

func (r *ApartmentRepository) GetByID(ctx context.Context, id int64) (*domain.Apartment, error) {
	var m apartmentModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, "apartment", id)
	}
	return toDomainApartment(m), nil
}

func (r *ApartmentRepository) List(ctx context.Context) ([]domain.Apartment, error) {
	var rows []apartmentModel
	if err := conn(ctx, r.db).Order("block, number").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Apartment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainApartment(m))
	}
	return out, nil
}
