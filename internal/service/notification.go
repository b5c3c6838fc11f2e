package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"launder-manager-backend/internal/model"
	"launder-manager-backend/internal/store"
)

// MachineStatus is a decoded state-change record from a machine.
type MachineStatus struct {
	MachineID int64    `json:"machineId"`
	State     string   `json:"state"`
	Price     *float64 `json:"price,omitempty"`
}

// NotificationService applies machine state transitions and earnings
// accrual, then publishes the outcome to all observers.
type NotificationService struct {
	store       store.Store
	broadcaster Broadcaster
	push        PushDispatcher
}

// NewNotificationService creates the state-transition handler. push may be
// nil when web push is not configured.
func NewNotificationService(s store.Store, b Broadcaster, push PushDispatcher) *NotificationService {
	return &NotificationService{store: s, broadcaster: b, push: push}
}

// ProcessStateChange applies one transition. The state string is matched
// case-insensitively. An unrecognized state mutates nothing and broadcasts
// nothing; a persistence failure (including an unknown machine id)
// propagates to the caller.
func (s *NotificationService) ProcessStateChange(ctx context.Context, status MachineStatus) error {
	switch strings.ToUpper(status.State) {
	case "RUNNING":
		if err := s.store.UpdateMachineState(ctx, status.MachineID, model.MachineStateRunning); err != nil {
			return err
		}
		s.broadcaster.Broadcast(fmt.Sprintf("Machine %d started", status.MachineID))

	case "STOPPED":
		if err := s.store.StopMachine(ctx, status.MachineID, status.Price); err != nil {
			return err
		}
		if status.Price != nil {
			s.broadcaster.Broadcast(fmt.Sprintf("Machine %d stopped, earnings of %.2f added", status.MachineID, *status.Price))
		} else {
			s.broadcaster.Broadcast(fmt.Sprintf("Machine %d stopped, no earnings specified", status.MachineID))
		}
		// A stopped machine has finished its cycle; tell subscribers it is
		// free again.
		if s.push != nil {
			s.push.Dispatch(status.MachineID)
		}

	default:
		log.Printf("Ignoring notification with unknown state %q for machine %d", status.State, status.MachineID)
	}
	return nil
}
