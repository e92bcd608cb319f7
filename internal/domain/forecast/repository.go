package forecast

import (
	"context"

	"github.com/google/uuid"
)

// ScenarioRepository persists forecast scenarios with their lines.
// Scenarios are scratch results; Delete genuinely removes them.
type ScenarioRepository interface {
	// FindByID loads a scenario with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*RevenueForecastScenario, error)

	// FindRecent lists the most recently created scenarios, without lines
	FindRecent(ctx context.Context, limit int) ([]RevenueForecastScenario, error)

	// Save persists a scenario and replaces its line set
	Save(ctx context.Context, scenario *RevenueForecastScenario) error

	// Delete removes a scenario and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}
