package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"launder-manager-backend/internal/model"
	"launder-manager-backend/internal/store"
)

// ConfigurationService validates and persists incoming configuration graphs
// and republishes the result to all observers.
type ConfigurationService struct {
	store       store.Store
	broadcaster Broadcaster
}

// NewConfigurationService creates the configuration handler.
func NewConfigurationService(s store.Store, b Broadcaster) *ConfigurationService {
	return &ConfigurationService{store: s, broadcaster: b}
}

// SaveAndBroadcast validates the graph, runs the cascading insert, and on
// success broadcasts a confirmation followed by the full snapshot of all
// configurations so out-of-sync observers can reconcile without a separate
// fetch. Validation and persistence failures propagate; nothing partial is
// ever broadcast.
func (s *ConfigurationService) SaveAndBroadcast(ctx context.Context, cfg *model.Proprietor) error {
	if err := validateConfiguration(cfg); err != nil {
		return err
	}

	if _, err := s.store.AddProprietor(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save configuration for proprietor %q: %w", cfg.Name, err)
	}
	log.Printf("Configuration saved for proprietor: %s", cfg.Name)

	s.broadcaster.Broadcast(fmt.Sprintf("Configuration saved for proprietor: %s", cfg.Name))

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	s.broadcaster.Broadcast(snapshot)
	return nil
}

// snapshot serializes every persisted configuration graph.
func (s *ConfigurationService) snapshot(ctx context.Context) (string, error) {
	proprietors, err := s.store.GetAllProprietors(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration snapshot: %w", err)
	}
	data, err := json.Marshal(proprietors)
	if err != nil {
		return "", fmt.Errorf("failed to serialize configuration snapshot: %w", err)
	}
	return string(data), nil
}

// validateConfiguration checks the graph's business rules in order and
// reports the first violation.
func validateConfiguration(cfg *model.Proprietor) error {
	if cfg == nil {
		return &ValidationError{Rule: "configuration is required"}
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return &ValidationError{Rule: "proprietor name is required"}
	}
	if strings.TrimSpace(cfg.Email) == "" {
		return &ValidationError{Rule: "proprietor email is required"}
	}
	if len(cfg.Laundries) == 0 {
		return &ValidationError{Rule: "at least one laundry is required"}
	}
	for _, laundry := range cfg.Laundries {
		for _, machine := range laundry.Machines {
			for _, cycle := range machine.Cycles {
				if cycle.Price < 0 {
					return &ValidationError{Rule: fmt.Sprintf("cycle %q has a negative price", cycle.Name)}
				}
			}
		}
	}
	return nil
}
