package config

import "time"

// TimingConfig holds the bounded random pauses of the agents
type TimingConfig struct {
	// Base pause unit; a pause of "max" lasts between 1 and max+1 units.
	// Zero only yields the processor.
	Unit time.Duration `mapstructure:"unit" validate:"min=0"`

	// Upper bounds, in units, of the entrepreneur serving a customer,
	// a craftsman making a piece and a customer's daily chores
	ServiceMax    int `mapstructure:"service_max" validate:"min=0"`
	ProductionMax int `mapstructure:"production_max" validate:"min=0"`
	ChoresMax     int `mapstructure:"chores_max" validate:"min=0"`

	// Rate at which a customer may find the door shut and try again
	DoorRetryPerSecond float64 `mapstructure:"door_retry_per_second" validate:"gt=0"`
	DoorRetryBurst     int     `mapstructure:"door_retry_burst" validate:"min=1"`

	// Hard limit on a whole run; zero disables it
	RunTimeout time.Duration `mapstructure:"run_timeout" validate:"min=0"`
}
