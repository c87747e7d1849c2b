package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// Timestamps are stored in UTC at minute precision so range predicates
// compare the same way on every driver.
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// --------------------------------------------------
// Business
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBusiness(
	ctx context.Context,
	id uuid.UUID,
) (*models.Business, error) {

	var b models.Business
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, err
	}
	return &b, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	businessID uuid.UUID,
	serviceID uuid.UUID,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOperatingHours(
	ctx context.Context,
	businessID uuid.UUID,
	weekday int,
) (availability.DayHours, error) {

	var oh models.OperatingHours
	if err := r.db.WithContext(ctx).
		Preload("Breaks").
		Where("business_id = ? AND weekday = ?", businessID, weekday).
		First(&oh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return availability.DayHours{}, domain.ErrScheduleNotFound
		}
		return availability.DayHours{}, err
	}

	return ToDayHours(oh)
}

// ToDayHours validates a stored row. A row that fails validation is a data
// problem, not a client error, so its business code is not propagated.
func ToDayHours(oh models.OperatingHours) (availability.DayHours, error) {
	breaks := make([][2]string, 0, len(oh.Breaks))
	for _, b := range oh.Breaks {
		breaks = append(breaks, [2]string{b.StartTime, b.EndTime})
	}

	h, err := availability.ParseDayHours(oh.Weekday, oh.IsOpen, oh.OpenTime, oh.CloseTime, breaks)
	if err != nil {
		return availability.DayHours{}, fmt.Errorf("operating hours %s/%d: %v", oh.BusinessID, oh.Weekday, err)
	}
	return h, nil
}

// --------------------------------------------------
// Appointment (availability)
// --------------------------------------------------

func (r *AppointmentGormRepository) ListConfirmed(
	ctx context.Context,
	businessID uuid.UUID,
	staffID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"business_id = ? AND staff_id = ? AND status = ? AND start_time < ? AND end_time > ?",
			businessID, staffID, string(domain.StatusConfirmed), utc(to), utc(from),
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Appointment (create)
// --------------------------------------------------

// CreateIfFree serialises writers of one (business, staff, day) on the
// booking_locks row, re-checks overlap under that lock and inserts. On
// PostgreSQL the appointments_no_overlap constraint rejects anything that
// slips past, which is reported as a slot conflict too.
func (r *AppointmentGormRepository) CreateIfFree(
	ctx context.Context,
	ap *models.Appointment,
) error {

	ap.StartTime = utc(ap.StartTime)
	ap.EndTime = utc(ap.EndTime)
	ap.Status = string(domain.StatusConfirmed)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lock := models.BookingLock{
			BusinessID: ap.BusinessID,
			StaffID:    ap.StaffID,
			Day:        ap.Day,
		}

		if err := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&lock).Error; err != nil {
			return fmt.Errorf("ensure booking lock: %w", err)
		}

		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("business_id = ? AND staff_id = ? AND day = ?", lock.BusinessID, lock.StaffID, lock.Day).
			First(&lock).Error; err != nil {
			return fmt.Errorf("acquire booking lock: %w", err)
		}

		var count int64
		if err := tx.
			Model(&models.Appointment{}).
			Where(
				"business_id = ? AND staff_id = ? AND status = ? AND start_time < ? AND end_time > ?",
				ap.BusinessID, ap.StaffID, string(domain.StatusConfirmed), ap.EndTime, ap.StartTime,
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return domain.ErrSlotConflict
		}

		return tx.Create(ap).Error
	})

	if httperr.IsExclusionConflict(err) {
		return domain.ErrSlotConflict
	}
	return err
}

func (r *AppointmentGormRepository) FindBooking(
	ctx context.Context,
	businessID uuid.UUID,
	staffID string,
	clientID uuid.UUID,
	start time.Time,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"business_id = ? AND staff_id = ? AND client_id = ? AND start_time = ? AND status = ?",
			businessID, staffID, clientID, utc(start), string(domain.StatusConfirmed),
		).
		First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ap, nil
}

// --------------------------------------------------
// Appointment (cancel / complete)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) TransitionStatus(
	ctx context.Context,
	ap *models.Appointment,
	to domain.Status,
	at time.Time,
) error {

	updates := map[string]any{"status": string(to)}
	switch to {
	case domain.StatusCancelled:
		updates["cancelled_at"] = at.UTC()
	case domain.StatusCompleted:
		updates["completed_at"] = at.UTC()
	default:
		return domain.ErrInvalidState
	}

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, string(domain.StatusConfirmed)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// CompleteElapsed marks up to limit confirmed appointments whose end time
// has passed as completed and returns them.
func (r *AppointmentGormRepository) CompleteElapsed(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]models.Appointment, error) {

	var done []models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND end_time <= ?", string(domain.StatusConfirmed), now.UTC()).
			Order("end_time ASC").
			Limit(limit).
			Find(&done).Error; err != nil {
			return err
		}
		if len(done) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(done))
		for _, ap := range done {
			ids = append(ids, ap.ID)
		}

		completedAt := now.UTC()
		if err := tx.
			Model(&models.Appointment{}).
			Where("id IN ? AND status = ?", ids, string(domain.StatusConfirmed)).
			Updates(map[string]any{
				"status":       string(domain.StatusCompleted),
				"completed_at": completedAt,
			}).Error; err != nil {
			return err
		}

		for i := range done {
			done[i].Status = string(domain.StatusCompleted)
			done[i].CompletedAt = &completedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return done, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListForPeriod(
	ctx context.Context,
	businessID uuid.UUID,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"business_id = ? AND start_time >= ? AND start_time < ?",
			businessID, utc(from), utc(to),
		).
		Order("start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListForClient(
	ctx context.Context,
	clientID uuid.UUID,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Business").
		Where("client_id = ?", clientID).
		Order("start_time DESC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
