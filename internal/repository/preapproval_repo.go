package repository

import (
	"context"
	"time"

	"societyhub/internal/domain"

	"gorm.io/gorm"
)

type PreApprovalRepository struct {
	db *gorm.DB
}

func NewPreApprovalRepository(db *gorm.DB) *PreApprovalRepository {
	return &PreApprovalRepository{db: db}
}

type preApprovalModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	Name             string     `gorm:"column:name;not null"`
	MobileNumber     *string    `gorm:"column:mobile_number"`
	Purpose          string     `gorm:"column:purpose;not null"`
	ApartmentID      int64      `gorm:"column:apartment_id;not null;index"`
	ExpectedDate     string     `gorm:"column:expected_date;type:varchar(10);not null;index"`
	ExpectedTimeFrom *string    `gorm:"column:expected_time_from;type:varchar(5)"`
	ExpectedTimeTo   *string    `gorm:"column:expected_time_to;type:varchar(5)"`
	NumberOfPersons  int        `gorm:"column:number_of_persons;not null;check:number_of_persons >= 1"`
	Status           string     `gorm:"column:status;type:varchar(16);not null;index"`
	CreatedBy        int64      `gorm:"column:created_by;not null;index"`
	Notes            *string    `gorm:"column:notes;type:text"`
	ArrivedAt        *time.Time `gorm:"column:arrived_at"`
	CancelledAt      *time.Time `gorm:"column:cancelled_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (preApprovalModel) TableName() string { return "pre_approved_visitors" }

func toDomainPreApproval(m preApprovalModel) *domain.PreApprovedVisitor {
	return &domain.PreApprovedVisitor{
		ID:               m.ID,
		Name:             m.Name,
		MobileNumber:     strVal(m.MobileNumber),
		Purpose:          m.Purpose,
		ApartmentID:      m.ApartmentID,
		ExpectedDate:     m.ExpectedDate,
		ExpectedTimeFrom: strVal(m.ExpectedTimeFrom),
		ExpectedTimeTo:   strVal(m.ExpectedTimeTo),
		NumberOfPersons:  m.NumberOfPersons,
		Status:           domain.PreApprovalStatus(m.Status),
		CreatedBy:        m.CreatedBy,
		Notes:            strVal(m.Notes),
		ArrivedAt:        m.ArrivedAt,
		CancelledAt:      m.CancelledAt,
		CompletedAt:      m.CompletedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *PreApprovalRepository) Create(ctx context.Context, p *domain.PreApprovedVisitor) error {
	m := preApprovalModel{
		Name:             p.Name,
		MobileNumber:     strPtr(p.MobileNumber),
		Purpose:          p.Purpose,
		ApartmentID:      p.ApartmentID,
		ExpectedDate:     p.ExpectedDate,
		ExpectedTimeFrom: strPtr(p.ExpectedTimeFrom),
		ExpectedTimeTo:   strPtr(p.ExpectedTimeTo),
		NumberOfPersons:  p.NumberOfPersons,
		Status:           string(p.Status),
		CreatedBy:        p.CreatedBy,
		Notes:            strPtr(p.Notes),
	}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return err
	}
	*p = *toDomainPreApproval(m)
	return nil
}

func (r *PreApprovalRepository) GetByID(ctx context.Context, id int64) (*domain.PreApprovedVisitor, error) {
	var m preApprovalModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, "pre-approval", id)
	}
	return toDomainPreApproval(m), nil
}

// PreApprovalStatusChange moves a pre-approval From -> To at At. When Today
// is set and the record leaves pending for anything but expiry, the update
// also requires the expected date not to have passed, so a lazily expired
// row can never be revived by a racing write.
type PreApprovalStatusChange struct {
	From  domain.PreApprovalStatus
	To    domain.PreApprovalStatus
	At    time.Time
	Today string
}

func (r *PreApprovalRepository) UpdateStatus(ctx context.Context, id int64, ch PreApprovalStatusChange) error {
	updates := map[string]any{"status": string(ch.To)}
	switch ch.To {
	case domain.PreApprovalArrived:
		updates["arrived_at"] = ch.At.UTC()
	case domain.PreApprovalCancelled:
		updates["cancelled_at"] = ch.At.UTC()
	case domain.PreApprovalCompleted:
		updates["completed_at"] = ch.At.UTC()
	}

	q := conn(ctx, r.db).
		Model(&preApprovalModel{}).
		Where("id = ? AND status = ?", id, string(ch.From))
	if ch.Today != "" && ch.From == domain.PreApprovalPending && ch.To != domain.PreApprovalExpired {
		q = q.Where("expected_date >= ?", ch.Today)
	}

	tx := q.Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return staleState("pre-approval", id)
	}
	return nil
}

// ExpireOverdue writes expired onto every pending pre-approval whose expected
// date is before today.
func (r *PreApprovalRepository) ExpireOverdue(ctx context.Context, today string) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&preApprovalModel{}).
		Where("status = ? AND expected_date < ?", string(domain.PreApprovalPending), today).
		Update("status", string(domain.PreApprovalExpired))
	return tx.RowsAffected, tx.Error
}

type PreApprovalFilter struct {
	// Status is matched against the effective status, see domain.EffectiveStatus.
	Status       domain.PreApprovalStatus
	ExpectedDate string
	ApartmentID  int64
	CreatedBy    int64
	Today        string
	Limit        int
	Offset       int
}

func (r *PreApprovalRepository) List(ctx context.Context, f PreApprovalFilter) ([]domain.PreApprovedVisitor, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)

	q := r.filtered(ctx, f)
	if f.Status != "" {
		q = whereEffectiveStatus(q, f.Status, f.Today)
	}

	var rows []preApprovalModel
	if err := q.Order("expected_date, id").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.PreApprovedVisitor, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainPreApproval(m))
	}
	return out, nil
}

// CountByStatus counts pre-approvals per effective status.
func (r *PreApprovalRepository) CountByStatus(ctx context.Context, f PreApprovalFilter) (map[domain.PreApprovalStatus]int64, error) {
	type row struct {
		EffectiveStatus string `gorm:"column:effective_status"`
		Total           int64  `gorm:"column:total"`
	}

	var rows []row
	err := r.filtered(ctx, f).
		Select("CASE WHEN status = ? AND expected_date < ? THEN ? ELSE status END AS effective_status, COUNT(*) AS total",
			string(domain.PreApprovalPending), f.Today, string(domain.PreApprovalExpired)).
		Group("effective_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := map[domain.PreApprovalStatus]int64{
		domain.PreApprovalPending:   0,
		domain.PreApprovalArrived:   0,
		domain.PreApprovalExpired:   0,
		domain.PreApprovalCancelled: 0,
		domain.PreApprovalCompleted: 0,
	}
	for _, rw := range rows {
		out[domain.PreApprovalStatus(rw.EffectiveStatus)] += rw.Total
	}
	return out, nil
}

func (r *PreApprovalRepository) filtered(ctx context.Context, f PreApprovalFilter) *gorm.DB {
	q := conn(ctx, r.db).Model(&preApprovalModel{})
	if f.ExpectedDate != "" {
		q = q.Where("expected_date = ?", f.ExpectedDate)
	}
	if f.ApartmentID > 0 {
		q = q.Where("apartment_id = ?", f.ApartmentID)
	}
	if f.CreatedBy > 0 {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	return q
}

func whereEffectiveStatus(q *gorm.DB, status domain.PreApprovalStatus, today string) *gorm.DB {
	pending := string(domain.PreApprovalPending)
	switch status {
	case domain.PreApprovalPending:
		return q.Where("status = ? AND expected_date >= ?", pending, today)
	case domain.PreApprovalExpired:
		return q.Where("status = ? OR (status = ? AND expected_date < ?)", string(domain.PreApprovalExpired), pending, today)
	default:
		return q.Where("status = ?", string(status))
	}
}
