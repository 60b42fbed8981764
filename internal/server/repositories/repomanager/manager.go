package repomanager

import (
	"context"
	"database/sql"

	"github.com/hlf20010508/transfery/internal/dbx"
	"github.com/hlf20010508/transfery/internal/server/repositories/devices"
	"github.com/hlf20010508/transfery/internal/server/repositories/messages"
	"github.com/hlf20010508/transfery/internal/server/repositories/secrets"
)

// RepositoryManager vends repository implementations bound to an arbitrary
// DBTX (a *sql.DB or an in-flight *sql.Tx), so services can run multiple
// repository calls inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Messages(db dbx.DBTX) messages.Repository
	Devices(db dbx.DBTX) devices.Repository
	Secrets(db dbx.DBTX) secrets.Repository
}
