package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainerrors "github.com/listenupapp/docwatch/internal/errors"
	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/id"
	"github.com/listenupapp/docwatch/internal/store"
)

// generationColumns is the ordered list of columns selected in generation
// queries. Must match the scan order in scanGeneration.
const generationColumns = `id, file_path, detail_level, trigger_kind, lines_changed, success,
	output_location, error_message, started_at, finished_at`

// scanGeneration scans a sql.Row (or sql.Rows via its Scan method) into a generator.Result.
func scanGeneration(scanner interface{ Scan(dest ...any) error }) (*generator.Result, error) {
	var (
		r              generator.Result
		trigger        string
		success        int
		outputLocation sql.NullString
		errorMessage   sql.NullString
		startedAt      int64
		finishedAt     int64
	)

	err := scanner.Scan(
		&r.ID,
		&r.FilePath,
		&r.DetailLevel,
		&trigger,
		&r.LinesChanged,
		&success,
		&outputLocation,
		&errorMessage,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Trigger = generator.Trigger(trigger)
	r.Success = success != 0
	r.OutputLocation = outputLocation.String
	r.ErrorMessage = errorMessage.String
	r.StartedAt = time.Unix(0, startedAt).UTC()
	r.FinishedAt = time.Unix(0, finishedAt).UTC()

	return &r, nil
}

// RecordResult inserts a generation result. A missing ID is generated.
func (s *Store) RecordResult(ctx context.Context, result generator.Result) error {
	if result.ID == "" {
		generated, err := id.Generate(id.PrefixGeneration)
		if err != nil {
			return err
		}
		result.ID = generated
	}

	success := 0
	if result.Success {
		success = 1
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO generations (`+generationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.FilePath,
		result.DetailLevel,
		string(result.Trigger),
		result.LinesChanged,
		success,
		nullString(result.OutputLocation),
		nullString(result.ErrorMessage),
		result.StartedAt.UnixNano(),
		result.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert generation %s: %w", result.ID, err)
	}
	return nil
}

// History returns the newest results for path, newest first. An empty path
// lists every file.
func (s *Store) History(ctx context.Context, path string, limit int) ([]generator.Result, error) {
	limit = store.ClampLimit(limit)

	query := `SELECT ` + generationColumns + ` FROM generations`
	args := []any{}
	if path != "" {
		query += ` WHERE file_path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	results := make([]generator.Result, 0)
	for rows.Next() {
		r, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

// LastSuccess returns the newest successful result for path.
func (s *Store) LastSuccess(ctx context.Context, path string) (*generator.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations
		WHERE file_path = ? AND success = 1
		ORDER BY started_at DESC, rowid DESC LIMIT 1`, path)

	r, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("no successful generation for %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("query last success: %w", err)
	}
	return r, nil
}

var _ store.History = (*Store)(nil)
