package tenantdb

import (
	"fmt"
	"time"
)

// MaxOperationTimeout caps OperationTimeout so one bad tenant database cannot
// wedge a worker.
const MaxOperationTimeout = 30 * time.Second

type Config struct {
	Service          Service       `env:"TENANTDB_SERVICE,required"`                   // Service selects the database family this process routes into.
	IdleThreshold    time.Duration `env:"TENANTDB_IDLE_THRESHOLD" envDefault:"30m"`    // IdleThreshold is the sweep age of tenant connections.
	OperationTimeout time.Duration `env:"TENANTDB_OPERATION_TIMEOUT" envDefault:"10s"` // OperationTimeout bounds probe, acquire and verify.
	Workers          int           `env:"TENANTDB_WORKERS" envDefault:"8"`             // Workers is the number of private switchers.
	SweepInterval    time.Duration `env:"TENANTDB_SWEEP_INTERVAL" envDefault:"5m"`     // SweepInterval is the period of the idle sweeper.
	FamiliesFile     string        `env:"TENANTDB_FAMILIES_FILE"`                      // FamiliesFile lists engine parameters of every service family.
}

func (c Config) Validate() error {
	if !c.Service.Valid() {
		return fmt.Errorf("%w: service is required", ErrInvalidConfig)
	}
	if c.OperationTimeout <= 0 || c.OperationTimeout > MaxOperationTimeout {
		return fmt.Errorf("%w: operation timeout must be in (0, %s], got %s",
			ErrInvalidConfig, MaxOperationTimeout, c.OperationTimeout)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.IdleThreshold <= 0 {
		return fmt.Errorf("%w: idle threshold must be positive", ErrInvalidConfig)
	}
	return nil
}
