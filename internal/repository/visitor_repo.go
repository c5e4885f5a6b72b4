package repository

import (
	"context"
	"time"

	"societyhub/internal/domain"

	"gorm.io/gorm"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

type visitorModel struct {
	ID                   int64      `gorm:"column:id;primaryKey"`
	Name                 string     `gorm:"column:name;not null"`
	MobileNumber         string     `gorm:"column:mobile_number;not null"`
	Purpose              string     `gorm:"column:purpose;not null"`
	ApartmentID          int64      `gorm:"column:apartment_id;not null;index"`
	VehicleNumber        *string    `gorm:"column:vehicle_number"`
	EntryTime            time.Time  `gorm:"column:entry_time;not null;index"`
	ExitTime             *time.Time `gorm:"column:exit_time"`
	Status               string     `gorm:"column:status;type:varchar(16);not null;index"`
	CreatedBy            int64      `gorm:"column:created_by;not null"`
	CheckedOutBy         *int64     `gorm:"column:checked_out_by"`
	PreApprovedVisitorID *int64     `gorm:"column:pre_approved_visitor_id;index"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (visitorModel) TableName() string { return "visitors" }

func toDomainVisitor(m visitorModel) *domain.Visitor {
	v := &domain.Visitor{
		ID:                   m.ID,
		Name:                 m.Name,
		MobileNumber:         m.MobileNumber,
		Purpose:              m.Purpose,
		ApartmentID:          m.ApartmentID,
		VehicleNumber:        strVal(m.VehicleNumber),
		EntryTime:            m.EntryTime.UTC(),
		Status:               domain.VisitorStatus(m.Status),
		CreatedBy:            m.CreatedBy,
		CheckedOutBy:         m.CheckedOutBy,
		PreApprovedVisitorID: m.PreApprovedVisitorID,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.ExitTime != nil {
		t := m.ExitTime.UTC()
		v.ExitTime = &t
	}
	return v
}

func (r *VisitorRepository) Create(ctx context.Context, v *domain.Visitor) error {
	m := visitorModel{
		Name:                 v.Name,
		MobileNumber:         v.MobileNumber,
		Purpose:              v.Purpose,
		ApartmentID:          v.ApartmentID,
		VehicleNumber:        strPtr(v.VehicleNumber),
		EntryTime:            v.EntryTime.UTC(),
		Status:               string(v.Status),
		CreatedBy:            v.CreatedBy,
		PreApprovedVisitorID: v.PreApprovedVisitorID,
	}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return err
	}
	*v = *toDomainVisitor(m)
	return nil
}

func (r *VisitorRepository) GetByID(ctx context.Context, id int64) (*domain.Visitor, error) {
	var m visitorModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, "visitor", id)
	}
	return toDomainVisitor(m), nil
}

// Checkout moves an inside visitor to checked_out. It fails with a stale
// state error if the visitor already left.
func (r *VisitorRepository) Checkout(ctx context.Context, id, by int64, at time.Time) error {
	tx := conn(ctx, r.db).
		Model(&visitorModel{}).
		Where("id = ? AND status = ?", id, string(domain.VisitorInside)).
		Updates(map[string]any{
			"status":         string(domain.VisitorCheckedOut),
			"exit_time":      at.UTC(),
			"checked_out_by": by,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return staleState("visitor", id)
	}
	return nil
}

func (r *VisitorRepository) CountByPreApproval(ctx context.Context, preApprovalID int64) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).
		Model(&visitorModel{}).
		Where("pre_approved_visitor_id = ?", preApprovalID).
		Count(&cnt).Error
	return cnt, err
}

type VisitorFilter struct {
	Status      domain.VisitorStatus
	ApartmentID int64
	EnteredFrom *time.Time
	EnteredTo   *time.Time
	ExitedFrom  *time.Time
	ExitedTo    *time.Time
	Limit       int
	Offset      int
}

func (r *VisitorRepository) List(ctx context.Context, f VisitorFilter) ([]domain.Visitor, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)

	var rows []visitorModel
	err := r.filtered(ctx, f).
		Order("entry_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Visitor, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainVisitor(m))
	}
	return out, nil
}

func (r *VisitorRepository) Count(ctx context.Context, f VisitorFilter) (int64, error) {
	var cnt int64
	err := r.filtered(ctx, f).Count(&cnt).Error
	return cnt, err
}

func (r *VisitorRepository) filtered(ctx context.Context, f VisitorFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&visitorModel{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.ApartmentID > 0 {
		q = q.Where("apartment_id = ?", f.ApartmentID)
	}
	if f.EnteredFrom != nil {
		q = q.Where("entry_time >= ?", f.EnteredFrom.UTC())
	}
	if f.EnteredTo != nil {
		q = q.Where("entry_time < ?", f.EnteredTo.UTC())
	}
	if f.ExitedFrom != nil {
		q = q.Where("exit_time >= ?", f.ExitedFrom.UTC())
	}
	if f.ExitedTo != nil {
		q = q.Where("exit_time < ?", f.ExitedTo.UTC())
	}
	return q
}
