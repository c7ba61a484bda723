package match

import (
	"sort"

	"revius/models"
	"revius/utils/similarity"
)

// Per-source similarity thresholds. Jikan and the novela catalog get a
// looser gate because translated/localized titles drift further from the
// query string.
var sourceThresholds = map[string]float64{
	models.SourceTMDB:   0.7,
	models.SourceOMDB:   0.7,
	models.SourceJikan:  0.6,
	models.SourceNovela: 0.6,
}

// Per-source year tolerances, applied only when both the query and the
// candidate carry a year.
var sourceYearTolerance = map[string]int{
	models.SourceTMDB:   1,
	models.SourceOMDB:   1,
	models.SourceJikan:  2,
	models.SourceNovela: 2,
}

// RankAndFilter sorts candidates by (similarity to the entry title
// descending, rating descending) and drops any candidate whose score does
// not exceed its source's similarity threshold or whose year falls outside
// the source's tolerance. Pure function, no I/O.
func RankAndFilter(entry models.RawListEntry, candidates []models.CandidateMatch) []models.CandidateMatch {
	type scored struct {
		candidate models.CandidateMatch
		score     float64
	}

	kept := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		score := similarity.Similarity(entry.Title, c.Title)

		threshold, ok := sourceThresholds[c.SourceName]
		if !ok {
			threshold = 0.7
		}
		if score <= threshold {
			continue
		}

		if entry.Year != 0 && c.Year != 0 {
			tolerance, ok := sourceYearTolerance[c.SourceName]
			if !ok {
				tolerance = 1
			}
			if abs(entry.Year-c.Year) > tolerance {
				continue
			}
		}

		kept = append(kept, scored{candidate: c, score: score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].candidate.Rating > kept[j].candidate.Rating
	})

	out := make([]models.CandidateMatch, len(kept))
	for i, s := range kept {
		out[i] = s.candidate
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
