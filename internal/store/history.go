package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryItem is one saved summary.
type HistoryItem struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Summary    string    `json:"summary"`
	Transcript string    `json:"transcript,omitempty"`
	YouTubeURL string    `json:"youtubeUrl,omitempty"`
	CreatedAt  time.Time `json:"timestamp"`
}

// YouTubeTitle is the history filename used for YouTube summaries.
func YouTubeTitle(title string) string {
	return "[YouTube] " + title
}

// AddHistory saves item as the newest entry and drops anything beyond the
// configured maximum. ID and CreatedAt are filled when empty.
func (s *Store) AddHistory(ctx context.Context, item HistoryItem) (HistoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.clock().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HistoryItem{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history(id, filename, summary, transcript, youtube_url, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		item.ID, item.Filename, item.Summary, item.Transcript, item.YouTubeURL,
		item.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return HistoryItem{}, fmt.Errorf("insert history: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`,
		s.maxItems)
	if err != nil {
		return HistoryItem{}, fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return HistoryItem{}, fmt.Errorf("commit history: %w", err)
	}

	s.log.Debug(ctx, "Saved history item %s (%s)", item.ID, item.Filename)
	return item, nil
}

// ListHistory returns every saved item, newest first.
func (s *Store) ListHistory(ctx context.Context) ([]HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, summary, transcript, youtube_url, created_at
		 FROM history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	items := []HistoryItem{}
	for rows.Next() {
		item, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetHistory(ctx context.Context, id string) (HistoryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, summary, transcript, youtube_url, created_at
		 FROM history WHERE id = ?`, id)

	item, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryItem{}, ErrNotFound
	}
	return item, err
}

func (s *Store) DeleteHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(row scanner) (HistoryItem, error) {
	var item HistoryItem
	var created string
	if err := row.Scan(&item.ID, &item.Filename, &item.Summary, &item.Transcript, &item.YouTubeURL, &created); err != nil {
		return HistoryItem{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		item.CreatedAt = ts
	}
	return item, nil
}
