package coupling

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const plotBarWidth = 50

// PlotCouplingTerminal writes an ascending bar chart of the scores to w. Bars
// are drawn on the absolute [0,1] scale so plots of different rounds compare.
func PlotCouplingTerminal(w io.Writer, coupling CouplingMap, title string) {
	type agentScore struct {
		AgentID string
		Score   float64
	}

	rows := make([]agentScore, 0, len(coupling))
	for id, score := range coupling {
		rows = append(rows, agentScore{AgentID: id, Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			return rows[i].AgentID < rows[j].AgentID
		}
		return rows[i].Score < rows[j].Score
	})

	idWidth := len("Agent")
	for _, r := range rows {
		idWidth = max(idWidth, len(r.AgentID))
	}

	fmt.Fprintf(w, "\n%s (ascending):\n", title)
	fmt.Fprintf(w, "%-*s | Coupling | Bar\n", idWidth, "Agent")
	fmt.Fprintf(w, "%s-|----------|%s\n", strings.Repeat("-", idWidth), strings.Repeat("-", plotBarWidth))

	if len(rows) == 0 {
		fmt.Fprintln(w, "(no agents)")
		return
	}

	for _, r := range rows {
		barWidth := int(r.Score * plotBarWidth)
		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}
		fmt.Fprintf(w, "%-*s | %.6f | %s\n", idWidth, r.AgentID, r.Score, bar)
	}

	summary := Summarize(coupling)
	fmt.Fprintf(w, "\nmean=%.6f stddev=%.6f min=%.6f max=%.6f\n",
		summary.Mean, summary.StdDev, summary.Min, summary.Max)
}
