package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/event-registration/internal/models"
	"gorm.io/gorm"
)

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error)
	FindLatestByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error)
	FindActiveByEventID(ctx context.Context, eventID uint) ([]models.Registration, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Registration, error)
	FindWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Registration, error)
	FindFirstWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint) (*models.Registration, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.RegistrationStatus) (int64, error)
	CountsByEvent(ctx context.Context, eventIDs []uint) (map[uint]StatusCounts, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.RegistrationStatus, cancelledAt *time.Time) error
}

// StatusCounts holds the live (non-cancelled) registration counts of one event.
type StatusCounts struct {
	Confirmed  int64
	Waitlisted int64
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// conn returns tx when the caller is inside a transaction, the pool otherwise.
func (r *registrationRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *registrationRepository) Create(ctx context.Context, tx *gorm.DB, reg *models.Registration) error {
	return r.conn(tx).WithContext(ctx).Create(reg).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	var reg models.Registration
	if err := r.conn(tx).WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindActiveByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status <> ?", userID, eventID, models.StatusCancelled).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindLatestByUserAndEvent includes cancelled rows so a repeated cancellation
// can be told apart from a user who never registered.
func (r *registrationRepository) FindLatestByUserAndEvent(ctx context.Context, tx *gorm.DB, userID, eventID uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Order("registered_at DESC, id DESC").
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindActiveByEventID(ctx context.Context, eventID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status <> ?", eventID, models.StatusCancelled).
		Order("registered_at ASC, id ASC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("registered_at DESC, id DESC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// FindWaitlisted returns the waitlist in promotion order.
func (r *registrationRepository) FindWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.conn(tx).WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, models.StatusWaitlisted).
		Order("registered_at ASC, id ASC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// FindFirstWaitlisted returns the earliest waitlisted registration for promotion.
func (r *registrationRepository) FindFirstWaitlisted(ctx context.Context, tx *gorm.DB, eventID uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.conn(tx).WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, models.StatusWaitlisted).
		Order("registered_at ASC, id ASC").
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.RegistrationStatus) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

// CountsByEvent counts confirmed and waitlisted registrations for several
// events in one grouped query. Events without registrations are absent.
func (r *registrationRepository) CountsByEvent(ctx context.Context, eventIDs []uint) (map[uint]StatusCounts, error) {
	counts := make(map[uint]StatusCounts, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID uint
		Status  models.RegistrationStatus
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Select("event_id, status, COUNT(*) AS total").
		Where("event_id IN ? AND status <> ?", eventIDs, models.StatusCancelled).
		Group("event_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		c := counts[row.EventID]
		switch row.Status {
		case models.StatusConfirmed:
			c.Confirmed = row.Total
		case models.StatusWaitlisted:
			c.Waitlisted = row.Total
		}
		counts[row.EventID] = c
	}
	return counts, nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.RegistrationStatus, cancelledAt *time.Time) error {
	return r.conn(tx).WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "cancelled_at": cancelledAt}).Error
}
