package usecase

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/ranking"
	"FinCast/pkg/util"

	"github.com/google/uuid"
)

// BuildReport ranks preds and attaches summary statistics and top picks.
// TargetDate is the calendar day after asOf.
func BuildReport(preds map[string]models.Prediction, skipped []models.Skipped, asOf time.Time) (*models.Report, error) {
	ranked := ranking.Rank(preds)
	stats, err := ranking.Summarize(ranked)
	if err != nil {
		return nil, err
	}
	long, short := ranking.TopPicks(ranked)
	return &models.Report{
		ID:         uuid.NewString(),
		AsOf:       asOf,
		TargetDate: util.NextDay(asOf),
		Ranked:     ranked,
		Stats:      stats,
		BestLong:   long,
		BestShort:  short,
		Skipped:    skipped,
	}, nil
}

// SentimentLabel buckets a sentiment score for display.
func SentimentLabel(score float64) string {
	switch {
	case score > 0.3:
		return "positive"
	case score > -0.3:
		return "neutral"
	default:
		return "negative"
	}
}

// Driver is one displayed factor of a prediction.
type Driver struct {
	Name  string
	Value float64
}

// KeyDrivers returns the factors significant enough to show.
func KeyDrivers(f models.Factors) []Driver {
	var out []Driver
	if math.Abs(f.Momentum) > 0.5 {
		out = append(out, Driver{"Momentum", f.Momentum})
	}
	if math.Abs(f.Sentiment) > 0.3 {
		out = append(out, Driver{"Social Sentiment", f.Sentiment})
	}
	if math.Abs(f.GapRecovery) > 0.2 {
		out = append(out, Driver{"Gap Fill", f.GapRecovery})
	}
	if f.SupportBounce > 0 {
		out = append(out, Driver{"Support Bounce", f.SupportBounce})
	}
	if f.ResistancePressure < 0 {
		out = append(out, Driver{"Resistance", f.ResistancePressure})
	}
	return out
}

const rule = "================================================================================"

// RenderText writes the console report.
func RenderText(w io.Writer, r *models.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("PRICE PREDICTIONS FOR NEXT SESSION\n")
	fmt.Fprintf(&b, "Prediction Date: %s (snapshot %s)\n", r.TargetDate.Format("2006-01-02"), r.AsOf.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s\n", rule)

	for _, p := range r.Ranked {
		arrow := "DOWN"
		if p.PredictedChange > 0 {
			arrow = "UP"
		}
		fmt.Fprintf(&b, "\n[%s] %s\n", arrow, p.Symbol)
		fmt.Fprintf(&b, "├─ Current Price: $%.2f\n", p.CurrentPrice)
		fmt.Fprintf(&b, "├─ Predicted Price: $%.2f\n", p.PredictedPrice)
		fmt.Fprintf(&b, "├─ Expected Change: $%.2f (%+.2f%%)\n", p.PredictedChange, p.PredictedChangePct)
		fmt.Fprintf(&b, "├─ Confidence: %.0f%%\n", p.Confidence)
		fmt.Fprintf(&b, "├─ Sentiment: %s %.2f\n", SentimentLabel(p.Sentiment.Score), p.Sentiment.Score)
		if p.Momentum != nil {
			fmt.Fprintf(&b, "├─ Social Momentum: %s (%d%%)\n", p.Momentum.Direction, p.Momentum.Confidence)
		}
		b.WriteString("└─ Key Drivers:\n")
		for _, d := range KeyDrivers(p.Factors) {
			fmt.Fprintf(&b, "   • %s: %+.2f%%\n", d.Name, d.Value)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("MARKET OUTLOOK SUMMARY\n")
	fmt.Fprintf(&b, "%s\n", rule)
	st := r.Stats
	fmt.Fprintf(&b, "Overall Market Direction: %s\n", st.Direction)
	fmt.Fprintf(&b, "Bullish Stocks: %d\n", st.BullishCount)
	fmt.Fprintf(&b, "Bearish Stocks: %d\n", st.BearishCount)
	fmt.Fprintf(&b, "Neutral Stocks: %d\n", st.NeutralCount)
	fmt.Fprintf(&b, "Average Expected Move: %+.2f%%\n", st.AvgChangePct)

	b.WriteString("\nTOP PICKS:\n")
	if p := r.BestLong; p != nil {
		fmt.Fprintf(&b, "  Best Long: %s (Target: $%.2f, %+.2f%%)\n", p.Symbol, p.PredictedPrice, p.PredictedChangePct)
	}
	if p := r.BestShort; p != nil {
		fmt.Fprintf(&b, "  Best Short: %s (Target: $%.2f, %+.2f%%)\n", p.Symbol, p.PredictedPrice, p.PredictedChangePct)
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\nSKIPPED:\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "  %s: %s\n", s.Symbol, s.Reason)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("DISCLAIMER: This is a simulated prediction for demonstration purposes.\n")
	b.WriteString("    Real trading involves risk. Always do your own research.\n")
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
