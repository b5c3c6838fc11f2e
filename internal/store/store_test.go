package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"launder-manager-backend/internal/model"
)

// newTestStore opens an isolated in-memory SQLite database.
func newTestStore(t *testing.T) Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.Proprietor{}, &model.Laundry{}, &model.Machine{}, &model.Cycle{})
	require.NoError(t, err)

	return NewGormStore(db)
}

func testGraph() *model.Proprietor {
	return &model.Proprietor{
		Name:  "Jean Dupont",
		Email: "jean@example.com",
		Laundries: []model.Laundry{
			{
				Name:    "Laverie Centre",
				Address: "12 Rue de la Paix",
				Machines: []model.Machine{
					{
						SerialNumber: "WM-001",
						Type:         "Washer",
						State:        model.MachineStateStopped,
						Cycles: []model.Cycle{
							{Name: "Quick", Price: 3.50, Duration: 1800},
							{Name: "Full", Price: 5.00, Duration: 3600},
						},
					},
					{
						SerialNumber: "DR-001",
						Type:         "Dryer",
						State:        model.MachineStateStopped,
						Cycles: []model.Cycle{
							{Name: "Dry", Price: 2.00, Duration: 2400},
						},
					},
				},
			},
			{
				Name:    "Laverie Gare",
				Address: "3 Place de la Gare",
			},
		},
	}
}

func TestAddProprietor_ThreadsIDsTopDown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	graph := testGraph()
	id, err := s.AddProprietor(ctx, graph)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := s.GetProprietorByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Jean Dupont", got.Name)
	require.Len(t, got.Laundries, 2)
	for _, laundry := range got.Laundries {
		assert.Equal(t, got.ID, laundry.ProprietorID)
		for _, machine := range laundry.Machines {
			assert.Equal(t, laundry.ID, machine.LaundryID)
			for _, cycle := range machine.Cycles {
				assert.Equal(t, machine.ID, cycle.MachineID)
			}
		}
	}

	var machineCount int
	for _, l := range got.Laundries {
		machineCount += len(l.Machines)
	}
	assert.Equal(t, 2, machineCount)
}

func TestAddProprietor_IgnoresClientAssignedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	graph := testGraph()
	graph.ID = 999
	graph.Laundries[0].ID = 888
	graph.Laundries[0].ProprietorID = 777

	id, err := s.AddProprietor(ctx, graph)
	require.NoError(t, err)
	assert.NotEqual(t, int64(999), id)

	got, err := s.GetProprietorByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.Laundries[0].ProprietorID)
}

func TestGetProprietorByID_MissingIsNotAnError(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetProprietorByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAllProprietors_Empty(t *testing.T) {
	s := newTestStore(t)

	all, err := s.GetAllProprietors(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateMachineState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	graph := testGraph()
	_, err := s.AddProprietor(ctx, graph)
	require.NoError(t, err)
	machineID := graph.Laundries[0].Machines[0].ID

	require.NoError(t, s.UpdateMachineState(ctx, machineID, model.MachineStateRunning))

	got, err := s.GetProprietorByID(ctx, graph.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MachineStateRunning, got.Laundries[0].Machines[0].State)
}

func TestUpdateMachineState_UnknownMachine(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateMachineState(context.Background(), 12345, model.MachineStateRunning)
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

func TestStopMachine_AccruesEarningsAtomically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	graph := testGraph()
	_, err := s.AddProprietor(ctx, graph)
	require.NoError(t, err)

	washer := graph.Laundries[0].Machines[0]
	dryer := graph.Laundries[0].Machines[1]

	require.NoError(t, s.UpdateMachineState(ctx, washer.ID, model.MachineStateRunning))

	price := 5.00
	require.NoError(t, s.StopMachine(ctx, washer.ID, &price))

	got, err := s.GetProprietorByID(ctx, graph.ID)
	require.NoError(t, err)

	var gotWasher, gotDryer model.Machine
	for _, m := range got.Laundries[0].Machines {
		switch m.ID {
		case washer.ID:
			gotWasher = m
		case dryer.ID:
			gotDryer = m
		}
	}

	assert.Equal(t, model.MachineStateStopped, gotWasher.State)
	assert.InDelta(t, 5.00, gotWasher.Earnings, 1e-9)
	// No other machine's earnings move.
	assert.Zero(t, gotDryer.Earnings)
}

func TestStopMachine_NoPriceLeavesEarningsAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	graph := testGraph()
	_, err := s.AddProprietor(ctx, graph)
	require.NoError(t, err)
	machineID := graph.Laundries[0].Machines[0].ID

	require.NoError(t, s.StopMachine(ctx, machineID, nil))

	got, err := s.GetProprietorByID(ctx, graph.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MachineStateStopped, got.Laundries[0].Machines[0].State)
	assert.Zero(t, got.Laundries[0].Machines[0].Earnings)
}

func TestStopMachine_UnknownMachine(t *testing.T) {
	s := newTestStore(t)

	price := 1.00
	err := s.StopMachine(context.Background(), 999, &price)
	assert.ErrorIs(t, err, ErrMachineNotFound)
}

// newMockDB builds a GORM connection over sqlmock for SQL-level assertions.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestAddProprietor_RollsBackWhenAStageFails(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "proprietors"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "laundries"`)).
		WillReturnError(errors.New("laundry insert failed"))
	mock.ExpectRollback()

	_, err := s.AddProprietor(context.Background(), &model.Proprietor{
		Name:  "Jean",
		Email: "jean@example.com",
		Laundries: []model.Laundry{
			{Name: "Laverie Centre"},
		},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "laundry insert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
