package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
)

// FlowSummary is the aggregate view of one flow's cards, the result type
// of the core's list_flows() operation.
type FlowSummary struct {
	Name       string
	CardCount  int
	FileCount  int
	StaleCount int
	Repos      []string
	AvgHeat    float64
	IsPageFlow bool
}

// pageDirSegments are path segments marking a file as a routed,
// user-facing page rather than a model/controller/component internal.
var pageDirSegments = []string{"/pages/", "/views/"}

// ListFlows aggregates every card by its flow, returning one FlowSummary
// per flow sorted by descending card count (ties broken by name).
func (s *Store) ListFlows(ctx context.Context) ([]FlowSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT flow, source_files, source_repos, stale, heat_score FROM cards
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type agg struct {
		cardCount  int
		staleCount int
		heatSum    float64
		files      map[string]bool
		repos      map[string]bool
		isPage     bool
	}
	byFlow := make(map[string]*agg)

	for rows.Next() {
		var flow, sourceFiles, sourceRepos string
		var stale bool
		var heat float64
		if err := rows.Scan(&flow, &sourceFiles, &sourceRepos, &stale, &heat); err != nil {
			return nil, err
		}

		a, ok := byFlow[flow]
		if !ok {
			a = &agg{files: make(map[string]bool), repos: make(map[string]bool)}
			byFlow[flow] = a
		}

		var files, repos []string
		json.Unmarshal([]byte(sourceFiles), &files)
		json.Unmarshal([]byte(sourceRepos), &repos)

		a.cardCount++
		if stale {
			a.staleCount++
		}
		a.heatSum += heat
		for _, f := range files {
			a.files[f] = true
			if isPagePath(f) {
				a.isPage = true
			}
		}
		for _, r := range repos {
			a.repos[r] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]FlowSummary, 0, len(byFlow))
	for flow, a := range byFlow {
		repos := make([]string, 0, len(a.repos))
		for r := range a.repos {
			repos = append(repos, r)
		}
		sort.Strings(repos)

		avgHeat := 0.0
		if a.cardCount > 0 {
			avgHeat = a.heatSum / float64(a.cardCount)
		}

		summaries = append(summaries, FlowSummary{
			Name:       flow,
			CardCount:  a.cardCount,
			FileCount:  len(a.files),
			StaleCount: a.staleCount,
			Repos:      repos,
			AvgHeat:    avgHeat,
			IsPageFlow: a.isPage,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CardCount != summaries[j].CardCount {
			return summaries[i].CardCount > summaries[j].CardCount
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

// HeatScoresForFlow returns the current heat_score of every card already
// persisted under the given flow name, feeding card generation's tiering
// decision (spec.md §4.5's cardTier).
func (s *Store) HeatScoresForFlow(ctx context.Context, flow string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT heat_score FROM cards WHERE flow = ?`, flow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var h float64
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		scores = append(scores, h)
	}
	return scores, rows.Err()
}

func isPagePath(path string) bool {
	lower := strings.ToLower(path)
	for _, seg := range pageDirSegments {
		if strings.Contains(lower, seg) {
			return true
		}
	}
	return false
}
