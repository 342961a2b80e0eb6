package loader

import (
	"fmt"
	"strings"
)

// StatQueryRequest holds parameters for constructing the team-stat
// load query against ClickHouse. The stat table is long-format: one
// row per (game, team, stat_name).
type StatQueryRequest struct {
	Seasons []int    // empty = all seasons
	TeamID  string   // empty = all teams
	Stats   []string // empty = all stat columns
}

// BuildStatQuery constructs the ClickHouse SQL for a stat load. All
// user-supplied values travel as bind args, never interpolated.
func BuildStatQuery(req StatQueryRequest) (string, []interface{}) {
	query := `
		SELECT game_id, team_id, season, week, is_home, stat_name, stat_value
		FROM team_game_stats
		WHERE 1=1`
	var args []interface{}

	if len(req.Seasons) > 0 {
		query += fmt.Sprintf(" AND season IN (%s)", placeholders(len(req.Seasons)))
		for _, s := range req.Seasons {
			args = append(args, s)
		}
	}
	if req.TeamID != "" {
		query += " AND team_id = ?"
		args = append(args, req.TeamID)
	}
	if len(req.Stats) > 0 {
		query += fmt.Sprintf(" AND stat_name IN (%s)", placeholders(len(req.Stats)))
		for _, s := range req.Stats {
			args = append(args, s)
		}
	}

	query += " ORDER BY season, week, team_id"
	return query, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
