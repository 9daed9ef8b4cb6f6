package ranking

import (
	"sort"

	"FinCast/internal/domain/models"
)

// Thresholds for counting a projection as bullish or bearish, in percent.
const (
	BullishThreshold = 0.5
	BearishThreshold = -0.5
)

// Rank orders predictions by predicted change descending, ties by symbol ascending.
// The map key is authoritative for the symbol.
func Rank(preds map[string]models.Prediction) []models.Prediction {
	out := make([]models.Prediction, 0, len(preds))
	for sym, p := range preds {
		p.Symbol = sym
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PredictedChangePct != out[j].PredictedChangePct {
			return out[i].PredictedChangePct > out[j].PredictedChangePct
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Summarize computes aggregate market-direction statistics.
func Summarize(preds []models.Prediction) (models.Stats, error) {
	if len(preds) == 0 {
		return models.Stats{}, &models.EmptyInputError{Op: "summarize"}
	}
	st := models.Stats{Total: len(preds)}
	sum := 0.0
	for _, p := range preds {
		switch {
		case p.PredictedChangePct > BullishThreshold:
			st.BullishCount++
		case p.PredictedChangePct < BearishThreshold:
			st.BearishCount++
		}
		sum += p.PredictedChangePct
	}
	st.NeutralCount = st.Total - st.BullishCount - st.BearishCount
	st.AvgChangePct = sum / float64(st.Total)
	st.Direction = Direction(st.AvgChangePct)
	return st, nil
}

// Direction labels an average projected move.
func Direction(avg float64) string {
	switch {
	case avg > BullishThreshold:
		return models.DirectionBullish
	case avg < BearishThreshold:
		return models.DirectionBearish
	default:
		return models.DirectionNeutral
	}
}

// TopPicks returns the best long and best short from a ranked sequence.
// Either may be nil.
func TopPicks(ranked []models.Prediction) (long, short *models.Prediction) {
	if len(ranked) == 0 {
		return nil, nil
	}
	if first := ranked[0]; first.PredictedChangePct > 0 {
		long = &first
	}
	if last := ranked[len(ranked)-1]; last.PredictedChangePct < 0 {
		short = &last
	}
	return long, short
}
