package sqlite

import (
	"context"
	"database/sql"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// SaveMatch upserts the aggregate and replaces its event list in one
// transaction. Event order is preserved through an explicit sequence
// column.
func (db *DB) SaveMatch(ctx context.Context, m *match.Match) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "begin save match %s", m.MatchID)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (match_id, home_team_id, away_team_id, competition, season, match_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			home_team_id = excluded.home_team_id,
			away_team_id = excluded.away_team_id,
			competition  = excluded.competition,
			season       = excluded.season,
			match_date   = excluded.match_date`,
		m.MatchID, m.HomeTeamID, m.AwayTeamID,
		nullable(m.Competition), nullable(m.Season), nullable(m.MatchDate))
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "upsert match %s", m.MatchID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE match_id = ?`, m.MatchID); err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "clear events for match %s", m.MatchID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (match_id, event_id, seq, kind, timestamp, x, y, end_x, end_y, player_id, team_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "prepare event insert")
	}
	defer stmt.Close()

	for seq, e := range m.Events {
		var endX, endY any
		if e.End != nil {
			endX, endY = e.End.X, e.End.Y
		}
		if _, err := stmt.ExecContext(ctx, m.MatchID, e.EventID, seq, string(e.Kind),
			e.Timestamp, e.Location.X, e.Location.Y, endX, endY,
			nullable(e.PlayerID), e.TeamID); err != nil {
			return fault.Wrap(fault.UpstreamUnavailable, err, "insert event %s", e.EventID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "commit match %s", m.MatchID)
	}
	return nil
}

// LoadMatch reads the aggregate back, events ordered by their ingestion
// sequence. The returned aggregate is sealed.
func (db *DB) LoadMatch(ctx context.Context, matchID string) (*match.Match, error) {
	row := db.QueryRowContext(ctx, `
		SELECT match_id, home_team_id, away_team_id,
		       COALESCE(competition, ''), COALESCE(season, ''), COALESCE(match_date, '')
		FROM matches WHERE match_id = ?`, matchID)

	m := &match.Match{}
	err := row.Scan(&m.MatchID, &m.HomeTeamID, &m.AwayTeamID, &m.Competition, &m.Season, &m.MatchDate)
	if err == sql.ErrNoRows {
		return nil, fault.New(fault.NotFound, "match %s", matchID)
	}
	if err != nil {
		return nil, fault.Wrap(fault.UpstreamUnavailable, err, "load match %s", matchID)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT event_id, kind, timestamp, x, y, end_x, end_y, COALESCE(player_id, ''), team_id
		FROM events WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, fault.Wrap(fault.UpstreamUnavailable, err, "load events for match %s", matchID)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e          match.Event
			kind       string
			endX, endY sql.NullFloat64
		)
		if err := rows.Scan(&e.EventID, &kind, &e.Timestamp, &e.Location.X, &e.Location.Y,
			&endX, &endY, &e.PlayerID, &e.TeamID); err != nil {
			return nil, fault.Wrap(fault.UpstreamUnavailable, err, "scan event for match %s", matchID)
		}
		e.Kind = match.EventKind(kind)
		if endX.Valid && endY.Valid {
			e.End = &pitch.Point{X: endX.Float64, Y: endY.Float64}
		}
		if err := m.AppendEvent(e); err != nil {
			return nil, fault.Wrap(fault.Internal, err, "stored event %s is invalid", e.EventID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Wrap(fault.UpstreamUnavailable, err, "iterate events for match %s", matchID)
	}

	m.Seal()
	return m, nil
}

// ListMatchIDs returns every stored match id in insertion order.
func (db *DB) ListMatchIDs(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT match_id FROM matches ORDER BY created_at, match_id`)
	if err != nil {
		return nil, fault.Wrap(fault.UpstreamUnavailable, err, "list matches")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fault.Wrap(fault.UpstreamUnavailable, err, "scan match id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
