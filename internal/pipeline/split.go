package pipeline

import "github.com/gridironhq/forecast-engine/internal/models"

// Split partitions a batch at the cutoff sequence key. Train keeps
// rows at or before the cutoff that have a known outcome; eval keeps
// everything after the cutoff. The split key is the game's position in
// time, never a random draw: evaluation games stay invisible to
// training, and because feature computation only ever consults
// strictly-prior records, no post-hoc feature filtering is needed.
func Split(batch models.DifferentialBatch, cutoff int) (train, eval models.DifferentialBatch) {
	train = models.DifferentialBatch{Names: batch.Names}
	eval = models.DifferentialBatch{Names: batch.Names}
	for _, row := range batch.Rows {
		switch {
		case row.SequenceKey > cutoff:
			eval.Rows = append(eval.Rows, row)
		case row.MarginHome.Valid() && row.Total.Valid():
			train.Rows = append(train.Rows, row)
		}
	}
	return train, eval
}

// SplitGames partitions raw game records the same way, for callers
// that need the game list rather than feature rows.
func SplitGames(games []models.GameRecord, cutoff int) (train, eval []models.GameRecord) {
	for _, g := range games {
		switch {
		case g.SequenceKey > cutoff:
			eval = append(eval, g)
		case g.OutcomeKnown():
			train = append(train, g)
		}
	}
	return train, eval
}
