package ws

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"launder-manager-backend/internal/model"
	"launder-manager-backend/internal/service"
)

// NotificationService applies machine state transitions.
type NotificationService interface {
	ProcessStateChange(ctx context.Context, status service.MachineStatus) error
}

// ConfigurationService validates and persists configuration graphs.
type ConfigurationService interface {
	SaveAndBroadcast(ctx context.Context, cfg *model.Proprietor) error
}

// Dispatcher routes parsed envelopes to the handler registered for their
// type tag.
type Dispatcher struct {
	notifications  NotificationService
	configurations ConfigurationService
}

// NewDispatcher creates a dispatcher over the two frame handlers.
func NewDispatcher(n NotificationService, c ConfigurationService) *Dispatcher {
	return &Dispatcher{notifications: n, configurations: c}
}

// Dispatch decodes the envelope's payload for its type and invokes the
// matching handler. An unrecognized but well-formed type is dropped with a
// warning so the protocol can evolve without breaking older peers.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) error {
	switch strings.ToUpper(env.Type) {
	case "NOTIFICATION":
		var status service.MachineStatus
		if err := json.Unmarshal(env.Raw, &status); err != nil {
			return &ProtocolError{Reason: "malformed notification payload"}
		}
		if status.MachineID == 0 {
			return &ProtocolError{Reason: "notification requires a machineId"}
		}
		return d.notifications.ProcessStateChange(ctx, status)

	case "CONFIGURATION":
		var cfg model.Proprietor
		if err := json.Unmarshal(env.Raw, &cfg); err != nil {
			return &ProtocolError{Reason: "malformed configuration payload"}
		}
		return d.configurations.SaveAndBroadcast(ctx, &cfg)

	default:
		log.Printf("Unknown message type received: %q", env.Type)
		return nil
	}
}
