package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Tech-Scrappers/hrms-shared-contracts/migrations"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/audit"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/config"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/credential"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/pg"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenantdb"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func tenantID(fs *flag.FlagSet) *string {
	return fs.String("id", "", "tenant id (UUID)")
}

func parseID(raw string) (uuid.UUID, error) {
	if !tenant.IsUUID(raw) {
		return uuid.Nil, fmt.Errorf("%w: -id must be a UUID, got %q", tenant.ErrInvalidIdentifier, raw)
	}
	return uuid.Parse(raw)
}

func migrateCmd(*flag.FlagSet) func(context.Context, *app) error {
	return func(ctx context.Context, a *app) error {
		central, err := a.centralPool(ctx)
		if err != nil {
			return err
		}
		return pg.MigrateFS(ctx, central, migrations.FS, a.cfg.Postgres, a.log)
	}
}

func listCmd(*flag.FlagSet) func(context.Context, *app) error {
	return func(ctx context.Context, a *app) error {
		central, err := a.centralPool(ctx)
		if err != nil {
			return err
		}
		tenants, err := tenant.NewStore(central).List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDOMAIN\tNAME\tACTIVE")
		for _, t := range tenants {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", t.ID, t.Domain, t.Name, t.Active)
		}
		return tw.Flush()
	}
}

func provisionCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	domain := fs.String("domain", "", "tenant domain, e.g. acme.example")
	name := fs.String("name", "", "display name")
	return func(ctx context.Context, a *app) error {
		if *domain == "" || *name == "" {
			return errors.New("-domain and -name are required")
		}
		lc, err := a.lifecycle(ctx, true)
		if err != nil {
			return err
		}
		t, err := lc.Provision(ctx, *domain, *name)
		if t != nil {
			_ = printJSON(t)
		}
		return err
	}
}

func activateCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	return setActiveCmd(fs, true)
}

func deactivateCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	return setActiveCmd(fs, false)
}

func setActiveCmd(fs *flag.FlagSet, active bool) func(context.Context, *app) error {
	rawID := tenantID(fs)
	return func(ctx context.Context, a *app) error {
		id, err := parseID(*rawID)
		if err != nil {
			return err
		}
		lc, err := a.lifecycle(ctx, false)
		if err != nil {
			return err
		}
		var t *tenant.Tenant
		if active {
			t, err = lc.Activate(ctx, id)
		} else {
			t, err = lc.Deactivate(ctx, id)
		}
		if err != nil {
			return err
		}
		return printJSON(t)
	}
}

func renameCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	rawID := tenantID(fs)
	domain := fs.String("domain", "", "new tenant domain")
	return func(ctx context.Context, a *app) error {
		id, err := parseID(*rawID)
		if err != nil {
			return err
		}
		lc, err := a.lifecycle(ctx, false)
		if err != nil {
			return err
		}
		t, err := lc.Rename(ctx, id, *domain)
		if err != nil {
			return err
		}
		return printJSON(t)
	}
}

func deleteCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	rawID := tenantID(fs)
	yes := fs.Bool("yes", false, "confirm dropping every database of the tenant")
	return func(ctx context.Context, a *app) error {
		id, err := parseID(*rawID)
		if err != nil {
			return err
		}
		if !*yes {
			return errors.New("refusing to drop tenant databases without -yes")
		}
		lc, err := a.lifecycle(ctx, true)
		if err != nil {
			return err
		}
		return lc.Delete(ctx, id)
	}
}

type databaseStatus struct {
	Service  tenantdb.Service `json:"service"`
	Database string           `json:"database"`
	Exists   bool             `json:"exists"`
	Verified bool             `json:"verified"`
	Error    string           `json:"error,omitempty"`
}

type infoOutput struct {
	Tenant    *tenant.Tenant   `json:"tenant"`
	Databases []databaseStatus `json:"databases"`
}

func infoCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	identifier := fs.String("tenant", "", "tenant id or domain")
	return func(ctx context.Context, a *app) error {
		_, dir, err := a.directory(ctx)
		if err != nil {
			return err
		}
		t, err := dir.ResolveFresh(ctx, *identifier)
		if err != nil {
			return err
		}
		families, pools, err := a.familyPools(ctx)
		if err != nil {
			return err
		}

		out := infoOutput{Tenant: t}
		for _, s := range tenantdb.Services() {
			out.Databases = append(out.Databases,
				checkDatabase(ctx, s, t.ID, tenantdb.NewPgCatalog(pools[s]), tenantdb.NewPgConnector(families[s])))
		}
		return printJSON(out)
	}
}

// checkDatabase probes the catalog, then connects and asks the engine which
// database it serves, the same checks a switch performs.
func checkDatabase(ctx context.Context, s tenantdb.Service, id uuid.UUID, catalog tenantdb.Catalog, connector tenantdb.Connector) databaseStatus {
	st := databaseStatus{Service: s, Database: tenantdb.PhysicalName(id, s)}

	exists, err := catalog.DatabaseExists(ctx, st.Database)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Exists = exists

	conn, err := connector.Open(ctx, st.Database)
	switch {
	case pg.IsUndefinedDatabaseError(err):
		st.Error = "database does not exist"
		return st
	case err != nil:
		st.Error = err.Error()
		return st
	}
	defer conn.Close()

	current, err := conn.CurrentDatabase(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Verified = current == st.Database
	if !st.Verified {
		st.Error = fmt.Sprintf("connection serves %q", current)
	}
	return st
}

func eventsCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	tenantFilter := fs.String("tenant", "", "only events of this tenant id")
	limit := fs.Int("limit", 50, "maximum number of events")
	return func(ctx context.Context, a *app) error {
		central, err := a.centralPool(ctx)
		if err != nil {
			return err
		}
		events, err := audit.NewPgStorage(central).Recent(ctx, *tenantFilter, *limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tSEVERITY\tTYPE\tTENANT\tREQUESTED\tACTOR\tCREDENTIAL\tIP")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format(time.RFC3339), e.Severity, e.Type, e.TenantID,
				e.RequestedTenant, e.ActorID, e.CredentialRef, e.IP)
		}
		return tw.Flush()
	}
}

func tokenCmd(fs *flag.FlagSet) func(context.Context, *app) error {
	sub := fs.String("sub", "", "subject (user id). Generated if empty.")
	tenantClaim := fs.String("tenant", "", "tenant id; empty issues a platform token")
	role := fs.String("role", "", "caller role")
	ttl := fs.Duration("ttl", 15*time.Minute, "token lifetime")
	return func(context.Context, *app) error {
		var cfg credential.Config
		if err := config.Load(&cfg); err != nil {
			return err
		}
		resolver, err := credential.NewJWTResolverFromConfig(cfg)
		if err != nil {
			return err
		}
		if *sub == "" {
			*sub = uuid.NewString()
		}
		token, err := resolver.Issue(credential.Claims{
			TenantID: *tenantClaim,
			Role:     *role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  *sub,
				ID:       uuid.NewString(),
				Audience: audience(cfg.Audience),
			},
		}, *ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}
}

func audience(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
