package postgres

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/stokaro/ptah/dbschema"
	"github.com/stokaro/ptah/migration/migrator"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations devuelve el esquema versionado (NNNNNNNNNN_nombre.up.sql / .down.sql).
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(fmt.Sprintf("postgres: migraciones embebidas: %v", err))
	}
	return sub
}

// Migrator migrador de esquema junto con su conexión; Close libera la conexión.
type Migrator struct {
	*migrator.Migrator
	conn *dbschema.DatabaseConnection
}

// NewMigrator abre una conexión propia (independiente del pool de la app) y prepara el migrador.
func NewMigrator(databaseURL string) (*Migrator, error) {
	conn, err := dbschema.ConnectToDatabase(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("conectar para migrar: %w", err)
	}
	m, err := migrator.NewFSMigrator(conn, Migrations())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("cargar migraciones: %w", err)
	}
	return &Migrator{Migrator: m, conn: conn}, nil
}

// Close cierra la conexión del migrador.
func (m *Migrator) Close() error {
	return m.conn.Close()
}
