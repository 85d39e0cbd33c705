package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"blast-arena/server/internal/grid"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore persists match history and levels in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, verifies connectivity, and bootstraps
// the schema.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS match_results (
		id SERIAL PRIMARY KEY,
		room_id TEXT NOT NULL,
		level_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		ticks BIGINT NOT NULL,
		players JSONB NOT NULL,
		finished_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS levels (
		id TEXT PRIMARY KEY,
		definition JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveMatchResult appends one finished match to the history table.
func (s *PostgresStore) SaveMatchResult(result *MatchResult) error {
	playersJSON, err := json.Marshal(result.Players)
	if err != nil {
		return fmt.Errorf("marshal match players: %w", err)
	}

	query := `
	INSERT INTO match_results (room_id, level_id, outcome, ticks, players, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.Exec(query,
		result.RoomID, result.LevelID, result.Outcome,
		int64(result.Ticks), string(playersJSON), result.FinishedAt)
	if err != nil {
		return fmt.Errorf("save match result: %w", err)
	}
	return nil
}

// LoadMatchResults returns the most recent results, newest first.
func (s *PostgresStore) LoadMatchResults(limit int) ([]*MatchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT room_id, level_id, outcome, ticks, players, finished_at
	FROM match_results ORDER BY finished_at DESC LIMIT $1
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("load match results: %w", err)
	}
	defer rows.Close()

	var results []*MatchResult
	for rows.Next() {
		var result MatchResult
		var ticks int64
		var playersJSON string
		if err := rows.Scan(&result.RoomID, &result.LevelID, &result.Outcome,
			&ticks, &playersJSON, &result.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		result.Ticks = uint64(ticks)
		if err := json.Unmarshal([]byte(playersJSON), &result.Players); err != nil {
			return nil, fmt.Errorf("unmarshal match players: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// SaveLevel upserts a level definition by id.
func (s *PostgresStore) SaveLevel(def grid.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	defJSON, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal level definition: %w", err)
	}

	query := `
	INSERT INTO levels (id, definition) VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE SET definition = $2, updated_at = NOW()
	`
	if _, err := s.db.Exec(query, def.ID, string(defJSON)); err != nil {
		return fmt.Errorf("save level %s: %w", def.ID, err)
	}
	return nil
}

// LoadLevel fetches one level definition by id.
func (s *PostgresStore) LoadLevel(id string) (grid.Definition, error) {
	var defJSON string
	err := s.db.QueryRow(`SELECT definition FROM levels WHERE id = $1`, id).Scan(&defJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return grid.Definition{}, fmt.Errorf("level %s not found", id)
		}
		return grid.Definition{}, fmt.Errorf("load level %s: %w", id, err)
	}

	var def grid.Definition
	if err := json.Unmarshal([]byte(defJSON), &def); err != nil {
		return grid.Definition{}, fmt.Errorf("unmarshal level %s: %w", id, err)
	}
	return def, nil
}

// LoadLevels fetches every stored level definition.
func (s *PostgresStore) LoadLevels() ([]grid.Definition, error) {
	rows, err := s.db.Query(`SELECT definition FROM levels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	defer rows.Close()

	var defs []grid.Definition
	for rows.Next() {
		var defJSON string
		if err := rows.Scan(&defJSON); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		var def grid.Definition
		if err := json.Unmarshal([]byte(defJSON), &def); err != nil {
			return nil, fmt.Errorf("unmarshal level: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// Close releases the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
