// Package database owns the SQLite handle behind SceneFlow's persisted
// state, which today is the batch definition store.
//
// The pool is pinned to a single connection: SQLite permits one writer,
// WAL mode keeps readers from blocking behind it, and the busy timeout
// absorbs brief lock contention instead of surfacing "database is
// locked" errors. Foreign keys are always enforced through the DSN.
//
// Schema changes ship as embedded migrations. The migrations package
// registers its embed.FS into MigrationsFS at init time; Migrate applies
// pending versions in timestamp order, each in its own transaction, so a
// failed migration rolls back alone and a rerun resumes from it. Files
// follow YYYYMMDD_HHMMSS_description.(up|down).sql.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// All access goes through parameterised statements, and the database
// file is chmodded to owner read/write only.
package database
