// Command tenantctl is the operator tool for the tenant directory: it applies
// migrations, provisions and removes tenants, and inspects their databases.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
)

type command struct {
	summary string
	flags   func(fs *flag.FlagSet) func(ctx context.Context, a *app) error
}

var commands = map[string]command{
	"migrate":    {"apply directory migrations", migrateCmd},
	"list":       {"list tenants", listCmd},
	"provision":  {"register a tenant and create its databases", provisionCmd},
	"activate":   {"make a tenant routable", activateCmd},
	"deactivate": {"stop routing to a tenant", deactivateCmd},
	"rename":     {"change a tenant domain", renameCmd},
	"delete":     {"deactivate a tenant, drop its databases and remove it", deleteCmd},
	"info":       {"show a tenant and check its databases", infoCmd},
	"events":     {"show recent security events", eventsCmd},
	"token":      {"issue a bearer token for testing", tokenCmd},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		usage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	run := cmd.flags(fs)
	_ = fs.Parse(os.Args[2:])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := newApp()
	err := run(ctx, a)
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tenantctl %s: %v\n", name, err)
		os.Exit(1)
	}
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "usage: tenantctl <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-11s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Configuration is read from the environment (PG_*, REDIS_*, TENANTDB_FAMILIES_FILE, AUTH_JWT_SECRET).")
}
