package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"maintenance-records-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore returns a store over a private in-memory database with the schema migrated.
func newSQLiteStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Machine{},
		&model.MaintenanceRecord{},
		&model.MaintenanceEvent{},
		&model.MaintenancePhoto{},
		&model.PushSubscription{},
	))
	return NewGormStore(db), db
}

func ptr[T any](v T) *T { return &v }

func TestGormStore_FinishPendingRecord(t *testing.T) {
	finishedAt := time.Date(2026, 1, 27, 13, 10, 0, 0, time.UTC)
	completion := Completion{SolutionDescription: "replaced seal", FinishedBy: 9, FinishedAt: finishedAt}

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
	}{
		{
			name: "pending record transitions to done",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "maintenance_records" SET "finished_at"=$1,"finished_by"=$2,"solution_description"=$3,"status"=$4,"updated_at"=$5 WHERE id = $6 AND machine_id = $7 AND status = $8`)).
					WithArgs(finishedAt, int64(9), "replaced seal", "DONE", Any{}, int64(5), int64(3), "PENDING").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "maintenance_records" WHERE id = $1 AND machine_id = $2`)).
					WithArgs(int64(5), int64(3), 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "machine_id", "status", "solution_description", "finished_by", "finished_at"}).
						AddRow(5, 3, "DONE", "replaced seal", 9, finishedAt))
				mock.ExpectCommit()
			},
		},
		{
			name: "status guard matches no row",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "maintenance_records" SET`)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectedErr: ErrConflict,
		},
		{
			name: "database failure is propagated",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "maintenance_records" SET`)).
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			expectedErr: errors.New("connection reset"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			record, err := s.FinishPendingRecord(context.Background(), 3, 5, completion)

			if tc.expectedErr != nil {
				require.Error(t, err)
				if errors.Is(tc.expectedErr, ErrConflict) {
					assert.ErrorIs(t, err, ErrConflict)
				}
				assert.Nil(t, record)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.RecordStatusDone, record.Status)
				require.NotNil(t, record.SolutionDescription)
				assert.Equal(t, "replaced seal", *record.SolutionDescription)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_UpdatePendingRecordOnlyWritesSuppliedFields(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "maintenance_records" SET "priority"=$1,"responsible_id"=$2,"updated_at"=$3 WHERE id = $4 AND machine_id = $5 AND status = $6`)).
		WithArgs("HIGH", int64(12), Any{}, int64(5), int64(3), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "maintenance_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "machine_id", "status", "priority", "responsible_id"}).
			AddRow(5, 3, "PENDING", "HIGH", 12))
	mock.ExpectCommit()

	record, err := s.UpdatePendingRecord(context.Background(), 3, 5, RecordChanges{
		Priority:      ptr(model.PriorityHigh),
		ResponsibleID: ptr(int64(12)),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, record.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FindActiveUserMapsMissingRow(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 AND active = $2`)).
		WithArgs(int64(4), true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindActiveUser(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fixture struct {
	machineA, machineB model.Machine
	alice, bob         model.User
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		machineA: model.Machine{ID: 1, Name: "Extruder DS"},
		machineB: model.Machine{ID: 2, Name: "Press 400t"},
		alice:    model.User{ID: 10, Name: "Alice", Email: "alice@example.com", Active: true},
		bob:      model.User{ID: 11, Name: "Bob", Email: "bob@example.com", Active: true},
	}
	require.NoError(t, db.Create(&[]model.Machine{f.machineA, f.machineB}).Error)
	require.NoError(t, db.Create(&[]model.User{f.alice, f.bob}).Error)
	return f
}

func TestGormStore_ListRecordsFilter(t *testing.T) {
	s, db := newSQLiteStore(t)
	f := seed(t, db)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	records := []model.MaintenanceRecord{
		{MachineID: f.machineA.ID, CreatedBy: 10, ResponsibleID: &f.alice.ID, Status: model.RecordStatusPending,
			Priority: model.PriorityHigh, Category: ptr(model.CategoryHydraulic), Shift: ptr(model.ShiftFirst),
			ProblemDescription: "Leak on rotary joint", CreatedAt: base},
		{MachineID: f.machineA.ID, CreatedBy: 10, ResponsibleID: &f.bob.ID, Status: model.RecordStatusDone,
			Priority: model.PriorityLow, Category: ptr(model.CategoryElectrical), Shift: ptr(model.ShiftSecond),
			ProblemDescription: "Breaker trips at 100% load", CreatedAt: base.Add(time.Hour)},
		{MachineID: f.machineB.ID, CreatedBy: 11, ResponsibleID: &f.alice.ID, Status: model.RecordStatusPending,
			Priority: model.PriorityMedium, ProblemDescription: "Hydraulic leak under ram", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range records {
		require.NoError(t, s.CreateRecord(ctx, &records[i]))
	}

	ids := func(rs []model.MaintenanceRecord) []int64 {
		out := make([]int64, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	testCases := []struct {
		name     string
		filter   RecordFilter
		expected []int64
	}{
		{"no predicates returns everything newest first", RecordFilter{}, []int64{records[2].ID, records[1].ID, records[0].ID}},
		{"machine scope", RecordFilter{MachineID: &f.machineA.ID}, []int64{records[1].ID, records[0].ID}},
		{"status", RecordFilter{Status: ptr(model.RecordStatusPending)}, []int64{records[2].ID, records[0].ID}},
		{"priority", RecordFilter{Priority: ptr(model.PriorityLow)}, []int64{records[1].ID}},
		{"category", RecordFilter{Category: ptr(model.CategoryHydraulic)}, []int64{records[0].ID}},
		{"shift", RecordFilter{Shift: ptr(model.ShiftSecond)}, []int64{records[1].ID}},
		{"responsible", RecordFilter{ResponsibleID: &f.alice.ID}, []int64{records[2].ID, records[0].ID}},
		{"substring", RecordFilter{Query: "  leak "}, []int64{records[2].ID, records[0].ID}},
		{"percent sign is literal", RecordFilter{Query: "100%"}, []int64{records[1].ID}},
		{"conjunction", RecordFilter{MachineID: &f.machineB.ID, Query: "leak", Status: ptr(model.RecordStatusPending)}, []int64{records[2].ID}},
		{"conjunction with no match", RecordFilter{MachineID: &f.machineB.ID, Status: ptr(model.RecordStatusDone)}, []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ListRecords(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(got))
		})
	}

	t.Run("machine projection", func(t *testing.T) {
		got, err := s.ListRecords(ctx, RecordFilter{WithMachine: true})
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.NotNil(t, got[0].Machine)
		assert.Equal(t, "Press 400t", got[0].Machine.Name)
		assert.Equal(t, f.machineB.ID, got[0].Machine.ID)
	})
}

func TestGormStore_ConditionalUpdateAgainstSQLite(t *testing.T) {
	s, db := newSQLiteStore(t)
	f := seed(t, db)
	ctx := context.Background()

	record := model.MaintenanceRecord{MachineID: f.machineA.ID, CreatedBy: 10, Status: model.RecordStatusPending,
		Priority: model.PriorityMedium, ProblemDescription: "Noisy bearing"}
	require.NoError(t, s.CreateRecord(ctx, &record))

	done, err := s.FinishPendingRecord(ctx, f.machineA.ID, record.ID, Completion{
		SolutionDescription: "bearing replaced", FinishedBy: 11, FinishedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusDone, done.Status)
	assert.Equal(t, int64(11), *done.FinishedBy)

	_, err = s.FinishPendingRecord(ctx, f.machineA.ID, record.ID, Completion{SolutionDescription: "again", FinishedBy: 10, FinishedAt: time.Now()})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.UpdatePendingRecord(ctx, f.machineA.ID, record.ID, RecordChanges{ProblemDescription: ptr("changed")})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := s.GetRecord(ctx, f.machineA.ID, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Noisy bearing", stored.ProblemDescription)
	assert.Equal(t, "bearing replaced", *stored.SolutionDescription)

	_, err = s.GetRecord(ctx, f.machineB.ID, record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_PhotosEventsAndAssignment(t *testing.T) {
	s, db := newSQLiteStore(t)
	f := seed(t, db)
	ctx := context.Background()

	record := model.MaintenanceRecord{MachineID: f.machineA.ID, CreatedBy: 10, ResponsibleID: &f.bob.ID,
		Status: model.RecordStatusPending, Priority: model.PriorityHigh, ProblemDescription: "Belt slipping"}
	require.NoError(t, s.CreateRecord(ctx, &record))

	older := model.MaintenancePhoto{MaintenanceRecordID: record.ID, Type: model.PhotoTypeBefore, FileURL: "u1", CreatedBy: 10,
		CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)}
	newer := model.MaintenancePhoto{MaintenanceRecordID: record.ID, Type: model.PhotoTypeAfter, FileURL: "u2", CreatedBy: 10,
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreatePhoto(ctx, &older))
	require.NoError(t, s.CreatePhoto(ctx, &newer))

	photos, err := s.ListPhotos(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, newer.ID, photos[0].ID)

	require.NoError(t, s.DeletePhoto(ctx, record.ID, older.ID))
	assert.ErrorIs(t, s.DeletePhoto(ctx, record.ID, older.ID), ErrNotFound)
	_, err = s.GetPhoto(ctx, record.ID, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	event := model.MaintenanceEvent{MaintenanceRecordID: record.ID, MachineID: f.machineA.ID, ComponentName: "V-belt",
		EventType: model.EventTypeReplacement, EventDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), CreatedBy: 10}
	require.NoError(t, s.CreateEvent(ctx, &event))
	events, err := s.ListEvents(ctx, f.machineA.ID, record.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "V-belt", events[0].ComponentName)

	assignment, err := s.GetAssignment(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Extruder DS", assignment.MachineName)
	require.NotNil(t, assignment.Responsible)
	assert.Equal(t, "bob@example.com", assignment.Responsible.Email)

	_, err = s.GetAssignment(ctx, record.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_PushSubscriptions(t *testing.T) {
	s, db := newSQLiteStore(t)
	f := seed(t, db)
	ctx := context.Background()

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "k", Auth: "a", UserID: f.alice.ID}
	require.NoError(t, s.UpsertPushSubscription(ctx, sub))

	moved := &model.PushSubscription{Endpoint: "https://push.example/1", P256DH: "k2", Auth: "a2", UserID: f.bob.ID}
	require.NoError(t, s.UpsertPushSubscription(ctx, moved))

	aliceSubs, err := s.ListPushSubscriptions(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceSubs)

	bobSubs, err := s.ListPushSubscriptions(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, bobSubs, 1)
	assert.Equal(t, "k2", bobSubs[0].P256DH)

	assert.ErrorIs(t, s.DeleteUserPushSubscription(ctx, f.alice.ID, moved.Endpoint), ErrNotFound)
	require.NoError(t, s.DeleteUserPushSubscription(ctx, f.bob.ID, moved.Endpoint))
	require.NoError(t, s.DeletePushSubscription(ctx, "https://push.example/unknown"))
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
