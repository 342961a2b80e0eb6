// Package loader reads the historical dataset into memory: the game
// schedule with outcomes from Postgres and the per-(game, team) stat
// rows from ClickHouse. The pipeline is batch and read-mostly; a load
// returns complete in-memory tables, never partial/streaming results.
package loader

import (
	"context"
	"fmt"
	"math"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridironhq/forecast-engine/internal/models"
)

// Loader reads games and team stats from their backing stores.
type Loader struct {
	ch     driver.Conn
	pg     PgPool
	logger *zap.SugaredLogger
}

// New creates a loader over the two stores.
func New(ch driver.Conn, pg PgPool, logger *zap.Logger) *Loader {
	return &Loader{ch: ch, pg: pg, logger: logger.Sugar()}
}

// Dataset is one complete in-memory snapshot of the inputs.
type Dataset struct {
	Games       []models.GameRecord
	StatsByTeam map[string][]models.TeamStatRecord
}

// LoadAll fetches schedule and stats concurrently and returns the
// combined snapshot.
func (l *Loader) LoadAll(ctx context.Context, seasons []int) (*Dataset, error) {
	ds := &Dataset{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		games, err := l.LoadGames(ctx, seasons)
		if err != nil {
			return fmt.Errorf("load games: %w", err)
		}
		ds.Games = games
		return nil
	})
	g.Go(func() error {
		stats, err := l.LoadTeamStats(ctx, StatQueryRequest{Seasons: seasons})
		if err != nil {
			return fmt.Errorf("load team stats: %w", err)
		}
		ds.StatsByTeam = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.logger.Infow("dataset loaded",
		"games", len(ds.Games), "teams", len(ds.StatsByTeam))
	return ds, nil
}

// LoadGames reads the schedule (played and upcoming) from Postgres.
// Outcome columns are nullable; unknown outcomes come back NaN-backed.
func (l *Loader) LoadGames(ctx context.Context, seasons []int) ([]models.GameRecord, error) {
	query := `
		SELECT game_id, season, week, home_team_id, away_team_id,
		       margin_home, total_points, spread_close, total_close
		FROM games`
	var args []any
	if len(seasons) > 0 {
		query += ` WHERE season = ANY($1)`
		args = append(args, seasons)
	}
	query += ` ORDER BY season, week, game_id`

	rows, err := l.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("games query: %w", err)
	}
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		var g models.GameRecord
		var margin, total, spread, marketTotal *float64
		if err := rows.Scan(&g.GameID, &g.Season, &g.Week, &g.HomeTeamID, &g.AwayTeamID,
			&margin, &total, &spread, &marketTotal); err != nil {
			return nil, fmt.Errorf("games scan: %w", err)
		}
		g.SequenceKey = models.SeqKey(g.Season, g.Week)
		g.MarginHome = models.FromPtr(margin)
		g.Total = models.FromPtr(total)
		g.Market = marketColumns(spread, marketTotal)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("games iteration: %w", err)
	}
	return games, nil
}

func marketColumns(spread, total *float64) map[string]float64 {
	m := make(map[string]float64, 2)
	if spread != nil {
		m["spread_close"] = *spread
	}
	if total != nil {
		m["total_close"] = *total
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// LoadTeamStats reads long-format stat rows from ClickHouse and pivots
// them into one TeamStatRecord per (team, game), grouped by team. A
// stat the source never reported is simply absent from the record's
// map and reads back as NaN.
func (l *Loader) LoadTeamStats(ctx context.Context, req StatQueryRequest) (map[string][]models.TeamStatRecord, error) {
	query, args := BuildStatQuery(req)
	rows, err := l.ch.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("team stats query: %w", err)
	}
	defer rows.Close()

	type key struct{ teamID, gameID string }
	index := make(map[key]*models.TeamStatRecord)
	order := make([]key, 0)

	for rows.Next() {
		var (
			gameID, teamID, statName string
			season, week             int32
			isHome                   bool
			statValue                float64
		)
		if err := rows.Scan(&gameID, &teamID, &season, &week, &isHome, &statName, &statValue); err != nil {
			return nil, fmt.Errorf("team stats scan: %w", err)
		}
		k := key{teamID, gameID}
		rec, ok := index[k]
		if !ok {
			rec = &models.TeamStatRecord{
				TeamID:      teamID,
				GameID:      gameID,
				Season:      int(season),
				SequenceKey: models.SeqKey(int(season), int(week)),
				IsHome:      isHome,
				Stats:       make(map[string]float64),
			}
			index[k] = rec
			order = append(order, k)
		}
		if math.IsInf(statValue, 0) {
			// Upstream division artifacts; record as missing.
			statValue = math.NaN()
		}
		rec.Stats[statName] = statValue
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("team stats iteration: %w", err)
	}

	byTeam := make(map[string][]models.TeamStatRecord)
	for _, k := range order {
		byTeam[k.teamID] = append(byTeam[k.teamID], *index[k])
	}
	return byTeam, nil
}
