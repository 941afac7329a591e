// Package archive stores finished session transcripts in PostgreSQL.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/samarth-chess/internal/game"
)

// Transcript is one archived session.
type Transcript struct {
	SessionID string
	Moves     []game.MoveRecord
	FinalFEN  string
	Reason    string
	StartedAt time.Time
	EndedAt   time.Time
}

const schema = `CREATE TABLE IF NOT EXISTS chess_transcripts (
    session_id  TEXT        NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    ended_at    TIMESTAMPTZ NOT NULL,
    reason      TEXT        NOT NULL,
    move_count  INTEGER     NOT NULL,
    moves       JSONB       NOT NULL,
    transcript  TEXT        NOT NULL,
    final_fen   TEXT        NOT NULL,
    duration_ms BIGINT      NOT NULL,
    PRIMARY KEY (session_id, started_at)
)`

type Repository struct {
	db *sql.DB
}

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// EnsureSchema creates the transcripts table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// SaveTranscript upserts t. A session archived twice from the same start
// time keeps the latest copy.
func (r *Repository) SaveTranscript(ctx context.Context, t Transcript) error {
	if r == nil || r.db == nil {
		return nil
	}
	movesRaw, err := json.Marshal(t.Moves)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(t.Moves))
	for _, m := range t.Moves {
		lines = append(lines, m.String())
	}
	duration := t.EndedAt.Sub(t.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO chess_transcripts (
        session_id, started_at, ended_at, reason, move_count,
        moves, transcript, final_fen, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
      ) ON CONFLICT (session_id, started_at) DO UPDATE SET
        ended_at=EXCLUDED.ended_at,
        reason=EXCLUDED.reason,
        move_count=EXCLUDED.move_count,
        moves=EXCLUDED.moves,
        transcript=EXCLUDED.transcript,
        final_fen=EXCLUDED.final_fen,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		t.SessionID, t.StartedAt, t.EndedAt, strings.TrimSpace(t.Reason), len(t.Moves),
		string(movesRaw), BuildTranscript(lines), t.FinalFEN, duration,
	)
	return err
}

// BuildTranscript numbers move lines in pairs, oldest first:
// "1. P: e2 → e4 P: e7 → e5 2. N: g1 → f3".
func BuildTranscript(log []string) string {
	var b strings.Builder
	for i := 0; i < len(log); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(i/2 + 1))
		b.WriteString(". ")
		b.WriteString(strings.TrimSpace(log[i]))
		if i+1 < len(log) {
			b.WriteByte(' ')
			b.WriteString(strings.TrimSpace(log[i+1]))
		}
	}
	return b.String()
}
