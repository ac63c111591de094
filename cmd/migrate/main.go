// migrate aplica o revierte el esquema versionado embebido en internal/infrastructure/postgres/migrations.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [--to 3]
//	go run ./cmd/migrate status
//
// Sin --database-url se usa DATABASE_URL o las variables DB_* de la configuración.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Returns-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Returns-api/pkg/config"
	"github.com/jhoicas/Returns-api/pkg/logger"
)

const (
	databaseURLFlag = "database-url"
	toFlag          = "to"
)

var dbFlags = map[string]cobraflags.Flag{
	databaseURLFlag: &cobraflags.StringFlag{
		Name:  databaseURLFlag,
		Value: "",
		Usage: "Connection string de PostgreSQL (por defecto, la de la configuración)",
	},
}

var downFlags = map[string]cobraflags.Flag{
	toFlag: &cobraflags.StringFlag{
		Name:  toFlag,
		Value: "",
		Usage: "Versión destino; vacío revierte solo la última migración",
	},
}

var log = logger.New(logger.Config{Env: "development", Service: "migrate"})

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones del esquema de devoluciones",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	up := &cobra.Command{Use: "up", Short: "Aplica las migraciones pendientes", RunE: upCommand}
	down := &cobra.Command{Use: "down", Short: "Revierte la última migración o hasta --to", RunE: downCommand}
	status := &cobra.Command{Use: "status", Short: "Muestra la versión actual y las pendientes", RunE: statusCommand}

	for _, cmd := range []*cobra.Command{up, down, status} {
		cobraflags.RegisterMap(cmd, dbFlags)
	}
	cobraflags.RegisterMap(down, downFlags)
	root.AddCommand(up, down, status)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("migración fallida")
		os.Exit(1)
	}
}

func openMigrator() (*postgres.Migrator, error) {
	url := dbFlags[databaseURLFlag].GetString()
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("cargar configuración: %w", err)
		}
		url = cfg.DB.ConnectionString()
	}
	return postgres.NewMigrator(url)
}

func upCommand(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.MigrateUp(cmd.Context()); err != nil {
		return err
	}
	return printStatus(cmd.Context(), m)
}

func downCommand(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if raw := downFlags[toFlag].GetString(); raw != "" {
		target, err := strconv.Atoi(raw)
		if err != nil || target < 0 {
			return fmt.Errorf("--to inválido: %q", raw)
		}
		err = m.MigrateDownTo(cmd.Context(), target)
		if err != nil {
			return err
		}
	} else if err := m.MigrateDown(cmd.Context()); err != nil {
		return err
	}
	return printStatus(cmd.Context(), m)
}

func statusCommand(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()
	return printStatus(cmd.Context(), m)
}

func printStatus(ctx context.Context, m *postgres.Migrator) error {
	st, err := m.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("current_version", st.CurrentVersion).
		Int("total", st.TotalMigrations).
		Ints("pending", st.PendingMigrations).
		Bool("has_pending", st.HasPendingChanges).
		Msg("estado de migraciones")
	return nil
}
