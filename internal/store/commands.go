package store

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// CommandRecord is one submitted command. The client IP is stored hashed.
type CommandRecord struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

type CommandCount struct {
	Command string `json:"command"`
	Count   int64  `json:"count"`
}

type Stats struct {
	TotalCommands    int64           `json:"total_commands"`
	FailedCommands   int64           `json:"failed_commands"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	TotalSessions    int64           `json:"total_sessions"`
	CommandsToday    int64           `json:"commands_today"`
	CommandsThisWeek int64           `json:"commands_this_week"`
	TopCommands      []CommandCount  `json:"top_commands"`
	RecentCommands   []CommandRecord `json:"recent_commands"`
}

// maxCommandLen caps, in bytes, what an unknown command can store.
const maxCommandLen = 64

// RecordCommand appends rec to the command log.
func (s *SQLite) RecordCommand(ctx context.Context, rec CommandRecord) error {
	command := truncate(rec.Command, maxCommandLen)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO command_log (hashed_ip, session_id, command, success, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.HashedIP, rec.SessionID, command, rec.Success, rec.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}
	return nil
}

// RecentCommands returns up to limit records, newest first.
func (s *SQLite) RecentCommands(ctx context.Context, limit int) ([]CommandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, session_id, command, success, created_at
		FROM command_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.HashedIP, &rec.SessionID, &rec.Command, &rec.Success, &created); err != nil {
			continue
		}
		rec.Timestamp = time.UnixMilli(created).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CommandStats aggregates the command log relative to now.
func (s *SQLite) CommandStats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalCommands, `SELECT COUNT(*) FROM command_log`, nil},
		{&stats.FailedCommands, `SELECT COUNT(*) FROM command_log WHERE success = 0`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM command_log`, nil},
		{&stats.CommandsToday, `SELECT COUNT(*) FROM command_log WHERE created_at >= ?`,
			[]any{startOfDay(now).UnixMilli()}},
		{&stats.CommandsThisWeek, `SELECT COUNT(*) FROM command_log WHERE created_at >= ?`,
			[]any{now.Add(-7 * 24 * time.Hour).UnixMilli()}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count commands: %w", err)
		}
	}

	sessions, err := s.SessionCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	stats.TotalSessions = sessions

	rows, err := s.db.QueryContext(ctx, `
		SELECT command, COUNT(*) AS n
		FROM command_log
		WHERE success = 1
		GROUP BY command
		ORDER BY n DESC, command ASC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query top commands: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cc CommandCount
		if err := rows.Scan(&cc.Command, &cc.Count); err != nil {
			continue
		}
		stats.TopCommands = append(stats.TopCommands, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.RecentCommands, err = s.RecentCommands(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// PurgeCommandsBefore deletes log records older than cutoff.
func (s *SQLite) PurgeCommandsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM command_log WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge commands: %w", err)
	}
	return result.RowsAffected()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
