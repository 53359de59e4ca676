// Package history persists hand histories and tournament participant records
// to SQLite. Writes happen on a background goroutine so settlement never
// blocks on disk; runtime state stays authoritative in memory and the store
// is only a recovery hint.
package history

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
)

// HandRecord is one settled hand
type HandRecord struct {
	HandID       string
	TableID      string
	TournamentID string
	HandNumber   uint64
	Board        []string
	WinnerID     string
	PotTotal     int
	Payouts      map[string]int
	FoldedOut    bool
	SettledAt    time.Time
}

// ParticipantRecord is a tournament participant's latest status
type ParticipantRecord struct {
	TournamentID   string
	UserID         string
	Status         string
	Chips          int
	FinishPosition int
	UpdatedAt      time.Time
}

// Store owns the SQLite connection and the background write queue
type Store struct {
	db     *sql.DB
	queue  chan func()
	done   chan struct{}
	logger *log.Logger
}

// Open opens (creating if needed) the history database at path and starts
// the background writer.
func Open(path string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{
		db:     db,
		queue:  make(chan func(), 256),
		done:   make(chan struct{}),
		logger: logger.WithPrefix("history"),
	}
	go s.writer()
	return s, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hands (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			tournament_id TEXT,
			hand_number INTEGER NOT NULL,
			board TEXT NOT NULL,
			winner_id TEXT,
			pot_total INTEGER NOT NULL,
			payouts TEXT NOT NULL,
			folded_out INTEGER NOT NULL DEFAULT 0,
			settled_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tournament_participants (
			tournament_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			chips INTEGER NOT NULL,
			finish_position INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (tournament_id, user_id)
		)
	`)
	return err
}

func (s *Store) writer() {
	for {
		select {
		case fn := <-s.queue:
			fn()
		case <-s.done:
			// Drain whatever is queued before exiting
			for {
				select {
				case fn := <-s.queue:
					fn()
				default:
					return
				}
			}
		}
	}
}

// enqueue hands a write to the background goroutine. Records are dropped
// rather than blocking the game loop when the queue is full.
func (s *Store) enqueue(fn func()) {
	select {
	case s.queue <- fn:
	default:
		s.logger.Warn("write queue full, dropping record")
	}
}

// RecordHand queues a settled hand for persistence
func (s *Store) RecordHand(rec HandRecord) {
	s.enqueue(func() {
		board, _ := json.Marshal(rec.Board)
		payouts, _ := json.Marshal(rec.Payouts)
		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO hands
			(id, table_id, tournament_id, hand_number, board, winner_id, pot_total, payouts, folded_out, settled_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.HandID, rec.TableID, nullable(rec.TournamentID), rec.HandNumber,
			string(board), rec.WinnerID, rec.PotTotal, string(payouts),
			boolInt(rec.FoldedOut), rec.SettledAt,
		)
		if err != nil {
			s.logger.Error("record hand", "handId", rec.HandID, "error", err)
		}
	})
}

// RecordParticipant queues a tournament participant status transition
func (s *Store) RecordParticipant(rec ParticipantRecord) {
	s.enqueue(func() {
		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO tournament_participants
			(tournament_id, user_id, status, chips, finish_position, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.TournamentID, rec.UserID, rec.Status, rec.Chips, rec.FinishPosition, rec.UpdatedAt,
		)
		if err != nil {
			s.logger.Error("record participant", "tournamentId", rec.TournamentID,
				"userId", rec.UserID, "error", err)
		}
	})
}

// HandsForTable returns persisted hands for a table, newest first
func (s *Store) HandsForTable(tableID string, limit int) ([]HandRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, table_id, COALESCE(tournament_id, ''), hand_number, board,
		       COALESCE(winner_id, ''), pot_total, payouts, folded_out, settled_at
		FROM hands WHERE table_id = ?
		ORDER BY hand_number DESC LIMIT ?`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HandRecord
	for rows.Next() {
		var rec HandRecord
		var board, payouts string
		var foldedOut int
		if err := rows.Scan(&rec.HandID, &rec.TableID, &rec.TournamentID, &rec.HandNumber,
			&board, &rec.WinnerID, &rec.PotTotal, &payouts, &foldedOut, &rec.SettledAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(board), &rec.Board)
		json.Unmarshal([]byte(payouts), &rec.Payouts)
		rec.FoldedOut = foldedOut != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close stops the background writer and closes the database
func (s *Store) Close() error {
	close(s.done)
	return s.db.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
