package correlation

import (
	"fmt"
	"strings"

	"github.com/smartcity/traffic-analytics/internal/domain"
	"github.com/smartcity/traffic-analytics/pkg/utils"
)

// Insights renders the deterministic summary sentences for a result
func Insights(r domain.CorrelationResult) string {
	if r.TotalIncidents == 0 {
		return "No accidents were recorded for the selected period."
	}

	var sentences []string

	switch rate := r.CorrelationRatePct; {
	case rate >= 70:
		sentences = append(sentences, fmt.Sprintf(
			"%d%% of accidents coincide with recurring traffic patterns, showing strong predictability.", rate))
	case rate >= 40:
		sentences = append(sentences, fmt.Sprintf(
			"%d%% of accidents coincide with recurring traffic patterns, showing moderate predictability.", rate))
	default:
		sentences = append(sentences, fmt.Sprintf(
			"Only %d%% of accidents coincide with recurring traffic patterns; many accidents occur outside typical patterns.", rate))
	}

	c := r.PerCongestionLevel
	pairs := c.Low + c.Medium + c.High
	if pairs > 0 && c.High*2 >= pairs {
		sentences = append(sentences, fmt.Sprintf(
			"%d%% of pattern-matched accidents happened during high congestion.", utils.Percent(c.High, pairs)))
	}

	var top *domain.PatternCorrelation
	for i := range r.PerPattern {
		if top == nil || r.PerPattern[i].IncidentCount > top.IncidentCount {
			top = &r.PerPattern[i]
		}
	}
	if top != nil {
		sentences = append(sentences, fmt.Sprintf(
			"The %q pattern (%s congestion) has the most matched accidents (%d).",
			top.PatternType, top.CongestionLevel, top.IncidentCount))
	}

	for _, p := range r.PerPattern {
		if p.DominantSeverity == domain.SeveritySevere {
			sentences = append(sentences, fmt.Sprintf(
				"Accidents during the %q pattern are predominantly severe.", p.PatternType))
			break
		}
	}

	return strings.Join(sentences, " ")
}
