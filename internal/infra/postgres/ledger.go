package postgres

import (
	"context"
	"fmt"

	"globetrotter/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Ledger stores finished games in the game_results table.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Record(ctx context.Context, e domain.LedgerEntry) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO game_results (username, game_id, total_correct, total_questions, score_percentage, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username, game_id) DO UPDATE SET
			total_correct = EXCLUDED.total_correct,
			total_questions = EXCLUDED.total_questions,
			score_percentage = EXCLUDED.score_percentage,
			finished_at = EXCLUDED.finished_at`,
		e.Username, string(e.GameID), e.TotalCorrect, e.TotalQuestions, e.ScorePercentage, e.FinishedAt)
	if err != nil {
		return fmt.Errorf("record game result: %w", err)
	}
	return nil
}

// List returns the user's games, newest first. limit <= 0 means no limit.
func (l *Ledger) List(ctx context.Context, username string, limit int) ([]domain.LedgerEntry, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := l.pool.Query(ctx, `
		SELECT username, game_id, total_correct, total_questions, score_percentage, finished_at
		FROM game_results
		WHERE username = $1
		ORDER BY finished_at DESC
		LIMIT $2`, username, lim)
	if err != nil {
		return nil, fmt.Errorf("list game results: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e      domain.LedgerEntry
			gameID string
		)
		if err := rows.Scan(&e.Username, &gameID, &e.TotalCorrect, &e.TotalQuestions, &e.ScorePercentage, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game result: %w", err)
		}
		e.GameID = domain.GameID(gameID)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
