// Package database provides SQLite connectivity for Gatehouse Core.
//
// It manages:
//   - the connection, opened with WAL mode and a busy timeout
//   - schema migrations embedded into the binary (see the migrations package)
//   - helpers shared by repositories, such as IsUniqueViolation
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions since it holds password hashes and issued tokens.
//
// Usage:
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive: each file pair is named
// YYYYMMDD_HHMMSS_description.up.sql / .down.sql and applied in its own
// transaction, recorded in schema_migrations.
package database
