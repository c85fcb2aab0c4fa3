package store

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-records-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	FindMachine(ctx context.Context, machineID int64) (*model.Machine, error)
	FindActiveUser(ctx context.Context, userID int64) (*model.User, error)

	CreateRecord(ctx context.Context, record *model.MaintenanceRecord) error
	GetRecord(ctx context.Context, machineID, recordID int64) (*model.MaintenanceRecord, error)
	UpdatePendingRecord(ctx context.Context, machineID, recordID int64, changes RecordChanges) (*model.MaintenanceRecord, error)
	FinishPendingRecord(ctx context.Context, machineID, recordID int64, completion Completion) (*model.MaintenanceRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.MaintenanceRecord, error)
	GetAssignment(ctx context.Context, recordID int64) (*Assignment, error)

	CreateEvent(ctx context.Context, event *model.MaintenanceEvent) error
	ListEvents(ctx context.Context, machineID, recordID int64) ([]model.MaintenanceEvent, error)

	CreatePhoto(ctx context.Context, photo *model.MaintenancePhoto) error
	GetPhoto(ctx context.Context, recordID, photoID int64) (*model.MaintenancePhoto, error)
	ListPhotos(ctx context.Context, recordID int64) ([]model.MaintenancePhoto, error)
	DeletePhoto(ctx context.Context, recordID, photoID int64) error

	ListPushSubscriptions(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	DeleteUserPushSubscription(ctx context.Context, userID int64, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err error, msg string, opts ...goerr.Option) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return goerr.Wrap(ErrNotFound, msg, opts...)
	}
	return goerr.Wrap(err, msg, opts...)
}

func (s *gormStore) FindMachine(ctx context.Context, machineID int64) (*model.Machine, error) {
	var machine model.Machine
	if err := s.db.WithContext(ctx).First(&machine, machineID).Error; err != nil {
		return nil, notFound(err, "failed to find machine", goerr.V("machine_id", machineID))
	}
	return &machine, nil
}

func (s *gormStore) FindActiveUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND active = ?", userID, true).
		First(&user).Error
	if err != nil {
		return nil, notFound(err, "failed to find active user", goerr.V("user_id", userID))
	}
	return &user, nil
}

func (s *gormStore) CreateRecord(ctx context.Context, record *model.MaintenanceRecord) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return goerr.Wrap(err, "failed to create maintenance record", goerr.V("machine_id", record.MachineID))
	}
	return nil
}

func (s *gormStore) GetRecord(ctx context.Context, machineID, recordID int64) (*model.MaintenanceRecord, error) {
	return getRecord(s.db.WithContext(ctx), machineID, recordID)
}

func getRecord(tx *gorm.DB, machineID, recordID int64) (*model.MaintenanceRecord, error) {
	var record model.MaintenanceRecord
	err := tx.Where("id = ? AND machine_id = ?", recordID, machineID).First(&record).Error
	if err != nil {
		return nil, notFound(err, "failed to get maintenance record",
			goerr.V("machine_id", machineID), goerr.V("record_id", recordID))
	}
	return &record, nil
}

// UpdatePendingRecord applies changes only while the record is still PENDING.
// The status guard is part of the UPDATE statement so concurrent writers cannot both succeed.
func (s *gormStore) UpdatePendingRecord(ctx context.Context, machineID, recordID int64, changes RecordChanges) (*model.MaintenanceRecord, error) {
	values := changes.values()
	values["updated_at"] = s.now()
	return s.conditionalUpdate(ctx, machineID, recordID, values)
}

// FinishPendingRecord transitions a PENDING record to DONE with a compare-and-set on status.
func (s *gormStore) FinishPendingRecord(ctx context.Context, machineID, recordID int64, completion Completion) (*model.MaintenanceRecord, error) {
	values := map[string]any{
		"status":               model.RecordStatusDone,
		"solution_description": completion.SolutionDescription,
		"finished_by":          completion.FinishedBy,
		"finished_at":          completion.FinishedAt,
		"updated_at":           s.now(),
	}
	return s.conditionalUpdate(ctx, machineID, recordID, values)
}

func (s *gormStore) conditionalUpdate(ctx context.Context, machineID, recordID int64, values map[string]any) (*model.MaintenanceRecord, error) {
	var updated *model.MaintenanceRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.MaintenanceRecord{}).
			Where("id = ? AND machine_id = ? AND status = ?", recordID, machineID, model.RecordStatusPending).
			Updates(values)
		if res.Error != nil {
			return goerr.Wrap(res.Error, "failed to update maintenance record", goerr.V("record_id", recordID))
		}
		if res.RowsAffected == 0 {
			return goerr.Wrap(ErrConflict, "maintenance record is no longer pending", goerr.V("record_id", recordID))
		}

		record, err := getRecord(tx, machineID, recordID)
		if err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gormStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.MaintenanceRecord, error) {
	records := []model.MaintenanceRecord{}
	if err := filter.Apply(s.db.WithContext(ctx)).Find(&records).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list maintenance records")
	}
	return records, nil
}

func (s *gormStore) GetAssignment(ctx context.Context, recordID int64) (*Assignment, error) {
	var record model.MaintenanceRecord
	err := s.db.WithContext(ctx).
		Preload("Machine").
		Preload("Responsible").
		First(&record, recordID).Error
	if err != nil {
		return nil, notFound(err, "failed to load assignment", goerr.V("record_id", recordID))
	}

	assignment := &Assignment{Record: record, Responsible: record.Responsible}
	if record.Machine != nil {
		assignment.MachineName = record.Machine.Name
	}
	assignment.Record.Machine = nil
	assignment.Record.Responsible = nil
	return assignment, nil
}

func (s *gormStore) CreateEvent(ctx context.Context, event *model.MaintenanceEvent) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return goerr.Wrap(err, "failed to create maintenance event", goerr.V("record_id", event.MaintenanceRecordID))
	}
	return nil
}

func (s *gormStore) ListEvents(ctx context.Context, machineID, recordID int64) ([]model.MaintenanceEvent, error) {
	events := []model.MaintenanceEvent{}
	err := s.db.WithContext(ctx).
		Where("machine_id = ? AND maintenance_record_id = ?", machineID, recordID).
		Order("event_date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&events).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list maintenance events", goerr.V("record_id", recordID))
	}
	return events, nil
}

func (s *gormStore) CreatePhoto(ctx context.Context, photo *model.MaintenancePhoto) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(photo).Error; err != nil {
		return goerr.Wrap(err, "failed to create maintenance photo", goerr.V("record_id", photo.MaintenanceRecordID))
	}
	return nil
}

func (s *gormStore) GetPhoto(ctx context.Context, recordID, photoID int64) (*model.MaintenancePhoto, error) {
	var photo model.MaintenancePhoto
	err := s.db.WithContext(ctx).
		Where("id = ? AND maintenance_record_id = ?", photoID, recordID).
		First(&photo).Error
	if err != nil {
		return nil, notFound(err, "failed to get maintenance photo",
			goerr.V("record_id", recordID), goerr.V("photo_id", photoID))
	}
	return &photo, nil
}

func (s *gormStore) ListPhotos(ctx context.Context, recordID int64) ([]model.MaintenancePhoto, error) {
	photos := []model.MaintenancePhoto{}
	err := s.db.WithContext(ctx).
		Where("maintenance_record_id = ?", recordID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&photos).Error
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list maintenance photos", goerr.V("record_id", recordID))
	}
	return photos, nil
}

func (s *gormStore) DeletePhoto(ctx context.Context, recordID, photoID int64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND maintenance_record_id = ?", photoID, recordID).
		Delete(&model.MaintenancePhoto{})
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to delete maintenance photo", goerr.V("photo_id", photoID))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "maintenance photo already deleted", goerr.V("photo_id", photoID))
	}
	return nil
}

func (s *gormStore) ListPushSubscriptions(ctx context.Context, userID int64) ([]model.PushSubscription, error) {
	subs := []model.PushSubscription{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list push subscriptions", goerr.V("user_id", userID))
	}
	return subs, nil
}

// UpsertPushSubscription stores a browser subscription, moving it to sub.UserID if the endpoint was registered before.
func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(sub).Error
	if err != nil {
		return goerr.Wrap(err, "failed to upsert push subscription", goerr.V("user_id", sub.UserID))
	}
	return nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return goerr.Wrap(err, "failed to delete push subscription", goerr.V("endpoint", endpoint))
	}
	return nil
}

func (s *gormStore) DeleteUserPushSubscription(ctx context.Context, userID int64, endpoint string) error {
	res := s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		Delete(&model.PushSubscription{})
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to delete push subscription", goerr.V("user_id", userID))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "push subscription not found", goerr.V("user_id", userID))
	}
	return nil
}
