// Prints the leakage-safe momentum series for one team and stat so the
// rolling windows can be eyeballed against the raw ClickHouse rows.
//
// Usage: CLICKHOUSE_URL=... go run ./tools/inspect_features <team_id> <stat>
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/gridironhq/forecast-engine/internal/features"
	"github.com/gridironhq/forecast-engine/internal/loader"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatalf("usage: %s <team_id> <stat>", os.Args[0])
	}
	teamID, stat := os.Args[1], os.Args[2]

	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		chURL = "clickhouse://localhost:9000/forecast"
	}

	opts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatalf("Failed to parse DSN: %v", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open connection: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	l := loader.New(conn, nil, zap.NewNop())

	byTeam, err := l.LoadTeamStats(ctx, loader.StatQueryRequest{TeamID: teamID, Stats: []string{stat}})
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	history := byTeam[teamID]
	if len(history) == 0 {
		log.Fatalf("No rows for team %s", teamID)
	}
	features.SortHistory(history)

	computer := features.NewComputer(features.DefaultRollingConfig())
	series := computer.ComputeSeries(history, stat)

	fmt.Printf("team=%s stat=%s games=%d\n", teamID, stat, len(history))
	fmt.Printf("%-8s %-10s %10s %10s %10s %10s %10s %10s\n",
		"key", "game", "raw", "roll_mean", "ema", "trend", "vol", "ratio")
	for i := range history {
		rec := history[i]
		fmt.Printf("%-8d %-10s %10.2f %10.2f %10.2f %10.2f %10.2f %10.2f\n",
			rec.SequenceKey, rec.GameID, rec.Stat(stat),
			series.RollingMean[i], series.EMA[i], series.Trend[i],
			series.Volatility[i], series.RecentRatio[i])
	}
}
