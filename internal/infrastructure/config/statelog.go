package config

// StateLogConfig holds where the state log goes
type StateLogConfig struct {
	// Path of the state log; "-" writes to stdout
	File string `mapstructure:"file" validate:"required"`

	// Overwrite an existing file without asking
	Force bool `mapstructure:"force"`
}
