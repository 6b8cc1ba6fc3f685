package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reading repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append records one reading.
func (r *PostgresRepository) Append(ctx context.Context, reading Reading) error {
	query := `
		INSERT INTO fill_readings (device_id, percent, recorded_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, reading.DeviceID, reading.Percent, reading.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}
	return nil
}

// ListSince returns readings recorded at or after the cutoff, oldest
// first.
func (r *PostgresRepository) ListSince(ctx context.Context, cutoff time.Time) ([]Reading, error) {
	query := `
		SELECT id, device_id, percent, recorded_at
		FROM fill_readings
		WHERE recorded_at >= $1
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// ListDeviceSince returns one device's readings at or after the cutoff,
// oldest first.
func (r *PostgresRepository) ListDeviceSince(ctx context.Context, deviceID string, cutoff time.Time) ([]Reading, error) {
	query := `
		SELECT id, device_id, percent, recorded_at
		FROM fill_readings
		WHERE device_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, deviceID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying device readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

func scanReadings(rows pgx.Rows) ([]Reading, error) {
	var readings []Reading
	for rows.Next() {
		var reading Reading
		if err := rows.Scan(&reading.ID, &reading.DeviceID, &reading.Percent, &reading.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}
