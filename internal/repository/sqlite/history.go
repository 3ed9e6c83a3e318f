package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"trafficserver/internal/model"
)

// HistoryRepository mirrors every detection event into SQLite so the
// dashboard can query aggregated totals per time-of-day slot. The
// database defaults to in-memory: history does not survive a restart.
type HistoryRepository struct {
	conn *sql.DB
	mu   sync.Mutex
}

// NewHistoryRepository opens the database and creates the schema.
func NewHistoryRepository(dbPath string) (*HistoryRepository, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	r := &HistoryRepository{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return r, nil
}

// migrate creates the necessary tables if they don't exist.
func (r *HistoryRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		camera_id TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		count INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_hour ON events(hour);
	CREATE INDEX IF NOT EXISTS idx_events_camera_id ON events(camera_id);
	`

	_, err := r.conn.Exec(schema)
	return err
}

// Insert adds one detection event to the history.
func (r *HistoryRepository) Insert(ev *model.DetectionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.conn.Exec(`
		INSERT INTO events (camera_id, vehicle_type, count, hour, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, ev.CameraID, string(ev.VehicleType), ev.Count, ev.Timestamp.Hour(), ev.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// SlotTotals sums counts per vehicle type for events whose local hour
// falls inside the named slot. Unknown slots fall back to morning.
func (r *HistoryRepository) SlotTotals(slot string) (map[model.VehicleType]int, error) {
	from, to := slotHours(slot)

	r.mu.Lock()
	defer r.mu.Unlock()

	var rows *sql.Rows
	var err error
	if from <= to {
		rows, err = r.conn.Query(`
			SELECT vehicle_type, SUM(count) FROM events
			WHERE hour BETWEEN ? AND ?
			GROUP BY vehicle_type
		`, from, to)
	} else {
		// The slot wraps past midnight.
		rows, err = r.conn.Query(`
			SELECT vehicle_type, SUM(count) FROM events
			WHERE hour >= ? OR hour <= ?
			GROUP BY vehicle_type
		`, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query slot totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[model.VehicleType]int, len(model.VehicleTypes))
	for _, t := range model.VehicleTypes {
		totals[t] = 0
	}
	for rows.Next() {
		var vehicleType string
		var total int
		if err := rows.Scan(&vehicleType, &total); err != nil {
			return nil, fmt.Errorf("failed to scan slot totals: %w", err)
		}
		totals[model.VehicleType(vehicleType)] = total
	}
	return totals, rows.Err()
}

// slotHours returns the inclusive hour range for a named time slot.
func slotHours(slot string) (int, int) {
	switch slot {
	case "afternoon":
		return 12, 16
	case "evening":
		return 17, 20
	case "night":
		return 21, 4
	default: // morning
		return 5, 11
	}
}

// Close closes the database connection.
func (r *HistoryRepository) Close() error {
	return r.conn.Close()
}
