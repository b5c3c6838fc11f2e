package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"launder-manager-backend/internal/model"
)

// ErrMachineNotFound is returned when a state transition targets a machine
// id that does not exist.
var ErrMachineNotFound = errors.New("machine not found")

// Store defines the interface for all database operations.
type Store interface {
	// AddProprietor persists a full configuration graph in one transaction
	// and returns the generated proprietor id. Ids produced by each insert
	// stage are threaded into the children before they are inserted; the
	// graph passed in is updated in place.
	AddProprietor(ctx context.Context, p *model.Proprietor) (int64, error)
	// GetAllProprietors returns every configuration graph, children grouped
	// under their parents.
	GetAllProprietors(ctx context.Context) ([]model.Proprietor, error)
	// GetProprietorByID returns one graph, or (nil, nil) when the id is unknown.
	GetProprietorByID(ctx context.Context, id int64) (*model.Proprietor, error)
	// UpdateMachineState sets the machine's state without touching earnings.
	UpdateMachineState(ctx context.Context, machineID int64, state string) error
	// StopMachine marks the machine Stopped and, when price is non-nil,
	// accrues it into earnings. Both mutations happen in a single UPDATE so
	// no intermediate state is ever observable.
	StopMachine(ctx context.Context, machineID int64, price *float64) error
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// AddProprietor runs the cascading insert: proprietor, then each laundry,
// then each machine per laundry, then each cycle per machine. Any stage
// failure rolls back the whole call.
func (s *gormStore) AddProprietor(ctx context.Context, p *model.Proprietor) (int64, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ids are assigned by the database; ignore whatever the client sent.
		p.ID = 0
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("failed to insert proprietor %q: %w", p.Name, err)
		}

		for li := range p.Laundries {
			laundry := &p.Laundries[li]
			laundry.ID = 0
			laundry.ProprietorID = p.ID
			if err := tx.Omit(clause.Associations).Create(laundry).Error; err != nil {
				return fmt.Errorf("failed to insert laundry %q: %w", laundry.Name, err)
			}

			for mi := range laundry.Machines {
				machine := &laundry.Machines[mi]
				machine.ID = 0
				machine.LaundryID = laundry.ID
				if machine.State == "" {
					machine.State = model.MachineStateStopped
				}
				if err := tx.Omit(clause.Associations).Create(machine).Error; err != nil {
					return fmt.Errorf("failed to insert machine %q: %w", machine.SerialNumber, err)
				}

				for ci := range machine.Cycles {
					cycle := &machine.Cycles[ci]
					cycle.ID = 0
					cycle.MachineID = machine.ID
					if err := tx.Create(cycle).Error; err != nil {
						return fmt.Errorf("failed to insert cycle %q: %w", cycle.Name, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Configuration persisted: proprietor %d (%s), %d laundries", p.ID, p.Name, len(p.Laundries))
	return p.ID, nil
}

// GetAllProprietors reassembles every configuration graph.
func (s *gormStore) GetAllProprietors(ctx context.Context) ([]model.Proprietor, error) {
	var proprietors []model.Proprietor
	err := s.db.WithContext(ctx).
		Preload("Laundries.Machines.Cycles").
		Find(&proprietors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proprietors: %w", err)
	}
	return proprietors, nil
}

// GetProprietorByID returns one configuration graph. A missing id is not an
// error: the caller gets (nil, nil).
func (s *gormStore) GetProprietorByID(ctx context.Context, id int64) (*model.Proprietor, error) {
	var proprietor model.Proprietor
	err := s.db.WithContext(ctx).
		Preload("Laundries.Machines.Cycles").
		First(&proprietor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proprietor %d: %w", id, err)
	}
	return &proprietor, nil
}

// UpdateMachineState sets the state of one machine.
func (s *gormStore) UpdateMachineState(ctx context.Context, machineID int64, state string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Machine{}).
		Where("id = ?", machineID).
		Update("state", state)
	if res.Error != nil {
		return fmt.Errorf("failed to update state for machine %d: %w", machineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update state for machine %d: %w", machineID, ErrMachineNotFound)
	}
	return nil
}

// StopMachine marks the machine Stopped and accrues the cycle price, if any,
// in the same statement.
func (s *gormStore) StopMachine(ctx context.Context, machineID int64, price *float64) error {
	updates := map[string]any{"state": model.MachineStateStopped}
	if price != nil {
		updates["earnings"] = gorm.Expr("earnings + ?", *price)
	}

	res := s.db.WithContext(ctx).
		Model(&model.Machine{}).
		Where("id = ?", machineID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to stop machine %d: %w", machineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stop machine %d: %w", machineID, ErrMachineNotFound)
	}
	return nil
}
