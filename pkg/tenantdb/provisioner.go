package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/logger"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
)

// Executor runs DDL on the central database of one family.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Provisioner creates and drops the per-service databases of a tenant.
type Provisioner struct {
	families map[Service]Executor
	log      *slog.Logger
}

// NewProvisioner creates a Provisioner with one executor per service family.
func NewProvisioner(families map[Service]Executor, log *slog.Logger) *Provisioner {
	if log == nil {
		log = logger.Discard()
	}
	return &Provisioner{families: families, log: log}
}

// QuoteIdentifier quotes a database name for DDL.
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Create creates the database of tenantID in every service family. Databases
// that already exist are left alone, so Create can be retried.
func (p *Provisioner) Create(ctx context.Context, tenantID uuid.UUID) error {
	for _, s := range Services() {
		exec, err := p.executor(s)
		if err != nil {
			return err
		}
		name := PhysicalName(tenantID, s)
		if _, err := exec.Exec(ctx, "CREATE DATABASE "+QuoteIdentifier(name)); err != nil {
			if pg.IsDuplicateDatabaseError(err) {
				p.log.InfoContext(ctx, "tenant database already exists", logger.Database(name))
				continue
			}
			return fmt.Errorf("create database %q: %w", name, err)
		}
		p.log.InfoContext(ctx, "tenant database created",
			logger.TenantID(tenantID.String()), logger.Service(s.String()), logger.Database(name))
	}
	return nil
}

// Drop drops the database of tenantID in every service family. Missing
// databases are ignored. Errors of individual families are joined.
func (p *Provisioner) Drop(ctx context.Context, tenantID uuid.UUID) error {
	var errs []error
	for _, s := range Services() {
		exec, err := p.executor(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name := PhysicalName(tenantID, s)
		if _, err := exec.Exec(ctx, "DROP DATABASE IF EXISTS "+QuoteIdentifier(name)); err != nil {
			errs = append(errs, fmt.Errorf("drop database %q: %w", name, err))
			continue
		}
		p.log.InfoContext(ctx, "tenant database dropped",
			logger.TenantID(tenantID.String()), logger.Service(s.String()), logger.Database(name))
	}
	return errors.Join(errs...)
}

func (p *Provisioner) executor(s Service) (Executor, error) {
	exec, ok := p.families[s]
	if !ok || exec == nil {
		return nil, fmt.Errorf("%w: no family for service %s", ErrInvalidConfig, s)
	}
	return exec, nil
}
