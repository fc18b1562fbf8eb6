package tenantdb_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

func TestPgConnector(t *testing.T) {
	t.Parallel()

	t.Run("caps per-database pools regardless of family tuning", func(t *testing.T) {
		t.Parallel()

		connector := tenantdb.NewPgConnector(pg.Config{
			ConnectionString: "postgres://app:secret@db:5432/hrms_central",
			MaxOpenConns:     25,
			MaxIdleConns:     5,
			RetryAttempts:    3,
		})

		cfg := connector.Config()
		assert.Equal(t, int32(tenantdb.MaxConnsPerDatabase), cfg.MaxOpenConns)
		assert.Equal(t, int32(1), cfg.MaxIdleConns)
		assert.Equal(t, 1, cfg.RetryAttempts)

		database := tenantdb.PhysicalName(uuid.MustParse(idA), tenantdb.ServiceEmployee)
		poolCfg, err := pg.PoolConfig(cfg, database)
		require.NoError(t, err)
		assert.Equal(t, int32(tenantdb.MaxConnsPerDatabase), poolCfg.MaxConns)
		assert.Equal(t, int32(1), poolCfg.MinConns)
		assert.Equal(t, database, poolCfg.ConnConfig.Database)
		assert.Equal(t, "db", poolCfg.ConnConfig.Host)
	})

	t.Run("keeps smaller family limits", func(t *testing.T) {
		t.Parallel()

		connector := tenantdb.NewPgConnector(pg.Config{
			ConnectionString: "postgres://app:secret@db:5432/hrms_central",
			MaxOpenConns:     1,
		})

		cfg := connector.Config()
		assert.Equal(t, int32(1), cfg.MaxOpenConns)
		assert.Zero(t, cfg.MaxIdleConns)
	})
}
