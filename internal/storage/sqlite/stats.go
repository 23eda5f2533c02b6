package sqlite

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/metrics"
)

// PlayerStats is one persisted physical-stats row.
type PlayerStats struct {
	MatchID         string  `json:"match_id"`
	PlayerID        string  `json:"player_id"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	MaxSpeedKmh     float64 `json:"max_speed_kmh"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh"`
	SprintCount     int     `json:"sprint_count"`
}

// UpsertPhysicalStats writes one player's metrics, replacing any earlier
// row for the same (match_id, player_id).
func (db *DB) UpsertPhysicalStats(ctx context.Context, matchID, playerID string, m *metrics.PhysicalMetrics) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO physical_stats (match_id, player_id, total_distance_km, max_speed_kmh, avg_speed_kmh, sprint_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, player_id) DO UPDATE SET
			total_distance_km = excluded.total_distance_km,
			max_speed_kmh     = excluded.max_speed_kmh,
			avg_speed_kmh     = excluded.avg_speed_kmh,
			sprint_count      = excluded.sprint_count,
			updated_at        = CURRENT_TIMESTAMP`,
		matchID, playerID, m.TotalDistanceKm, m.MaxSpeedKmh, m.AvgSpeedKmh, m.SprintCount)
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "upsert physical stats %s/%s", matchID, playerID)
	}
	return nil
}

// GetPhysicalStats reads every player row for a match, ordered by player
// id for stable report output.
func (db *DB) GetPhysicalStats(ctx context.Context, matchID string) ([]PlayerStats, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT match_id, player_id, total_distance_km, max_speed_kmh, avg_speed_kmh, sprint_count
		FROM physical_stats WHERE match_id = ? ORDER BY player_id`, matchID)
	if err != nil {
		return nil, fault.Wrap(fault.UpstreamUnavailable, err, "load physical stats for %s", matchID)
	}
	defer rows.Close()

	var out []PlayerStats
	for rows.Next() {
		var s PlayerStats
		if err := rows.Scan(&s.MatchID, &s.PlayerID, &s.TotalDistanceKm, &s.MaxSpeedKmh, &s.AvgSpeedKmh, &s.SprintCount); err != nil {
			return nil, fault.Wrap(fault.UpstreamUnavailable, err, "scan physical stats for %s", matchID)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ppda is stored as TEXT so the infinite case survives the round trip the
// same way it does in JSON.
const ppdaInfinity = "inf"

// UpsertPPDA writes one team's PPDA for a match.
func (db *DB) UpsertPPDA(ctx context.Context, matchID, teamID string, value metrics.PPDA) error {
	stored := ppdaInfinity
	if value.IsFinite() {
		stored = strconv.FormatFloat(value.Value(), 'g', -1, 64)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO team_ppda (match_id, team_id, ppda)
		VALUES (?, ?, ?)
		ON CONFLICT(match_id, team_id) DO UPDATE SET
			ppda       = excluded.ppda,
			updated_at = CURRENT_TIMESTAMP`,
		matchID, teamID, stored)
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "upsert ppda %s/%s", matchID, teamID)
	}
	return nil
}

// GetPPDA reads one team's PPDA back.
func (db *DB) GetPPDA(ctx context.Context, matchID, teamID string) (metrics.PPDA, error) {
	var stored string
	err := db.QueryRowContext(ctx, `
		SELECT ppda FROM team_ppda WHERE match_id = ? AND team_id = ?`, matchID, teamID).Scan(&stored)
	if err == sql.ErrNoRows {
		return metrics.PPDA{}, fault.New(fault.NotFound, "ppda %s/%s", matchID, teamID)
	}
	if err != nil {
		return metrics.PPDA{}, fault.Wrap(fault.UpstreamUnavailable, err, "load ppda %s/%s", matchID, teamID)
	}
	if stored == ppdaInfinity {
		return metrics.InfinitePPDA(), nil
	}
	v, err := strconv.ParseFloat(stored, 64)
	if err != nil {
		return metrics.PPDA{}, fault.Wrap(fault.Internal, err, "stored ppda %q for %s/%s", stored, matchID, teamID)
	}
	return metrics.FinitePPDA(v), nil
}
