package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"codeberg.org/mutker/devicectl/internal/errors"
	"codeberg.org/mutker/devicectl/internal/logger"
)

// sampleColumns is the column layout of the samples table at SchemaVersion.
var sampleColumns = []string{
	"id",
	"timestamp",
	"battery_level",
	"battery_state",
	"low_power",
	"brightness",
	"thermal_state",
}

// columnDrift compares the on-disk samples table with sampleColumns.
type columnDrift struct {
	missing []string
	extra   []string
}

func (d columnDrift) empty() bool {
	return len(d.missing) == 0 && len(d.extra) == 0
}

// ValidateAndUpdateSchema keeps the samples table at SchemaVersion. A fresh
// file gets the schema created. A file with another version, or whose
// samples columns drifted from the expected layout, is copied into
// backupDir and recreated. Recorded history does not survive a recreate.
func ValidateAndUpdateSchema(db *sql.DB, backupDir string, log logger.Logger) error {
	errFactory := errors.New()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	hasSamples, err := TableExists(db, "samples")
	if err != nil {
		return err
	}

	if version == 0 && !hasSamples {
		log.Debug().Msg("No samples table, creating schema")
		return InitSchema(db, log)
	}

	var drift columnDrift
	if hasSamples {
		if drift, err = samplesDrift(db); err != nil {
			return err
		}
	}

	if version == SchemaVersion && drift.empty() {
		log.Debug().Int("version", version).Msg("Schema version is current")
		return nil
	}

	log.Warn().
		Int("found_version", version).
		Int("want_version", SchemaVersion).
		Strs("missing_columns", drift.missing).
		Strs("extra_columns", drift.extra).
		Msg("Samples schema out of date, recreating")

	if _, err := backupSamples(db, backupDir, version, log); err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}
	if err := dropSchema(db, log); err != nil {
		return err
	}
	return InitSchema(db, log)
}

func samplesDrift(db *sql.DB) (columnDrift, error) {
	errFactory := errors.New()

	rows, err := db.Query(`SELECT name FROM pragma_table_info('samples')`)
	if err != nil {
		return columnDrift{}, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	defer rows.Close()

	var have []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return columnDrift{}, errFactory.Wrap(ErrSchemaValidationFailed, err)
		}
		have = append(have, name)
	}
	if err := rows.Err(); err != nil {
		return columnDrift{}, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	var drift columnDrift
	for _, col := range sampleColumns {
		if !slices.Contains(have, col) {
			drift.missing = append(drift.missing, col)
		}
	}
	for _, col := range have {
		if !slices.Contains(sampleColumns, col) {
			drift.extra = append(drift.extra, col)
		}
	}
	return drift, nil
}

// backupSamples writes a consistent copy of the database next to the
// configured backups, named after the version it was written with.
func backupSamples(db *sql.DB, backupDir string, version int, log logger.Logger) (string, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(backupDir, defaultDirPerm); err != nil {
		return "", errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_backup_dir",
			Path:  backupDir,
			Error: err.Error(),
		})
	}

	name := fmt.Sprintf("metrics_v%d_%s.db", version, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(backupDir, name)

	// VACUUM INTO cannot run inside a transaction and takes no parameters.
	if _, err := db.Exec("VACUUM INTO '" + strings.ReplaceAll(path, "'", "''") + "'"); err != nil {
		return "", errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "vacuum_into",
			Path:  path,
			Error: err.Error(),
		})
	}

	log.Info().Str("path", path).Int("version", version).Msg("Samples database backed up")

	return path, nil
}

func dropSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Debug().Err(err).Msg("Failed to roll back schema drop")
		}
	}()

	for _, stmt := range []string{
		"DROP INDEX IF EXISTS samples_timestamp",
		"DROP TABLE IF EXISTS samples",
		"DROP TABLE IF EXISTS schema_versions",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return errFactory.WithData(ErrSchemaMigrationFailed, struct {
				Statement string
				Error     string
			}{
				Statement: stmt,
				Error:     err.Error(),
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	return nil
}
