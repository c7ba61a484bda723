package novelas

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"revius/models"
	"revius/utils/similarity"
)

// Dedup collapses same-run duplicates by normalized title, keeping the first
// occurrence. Running it twice yields the same result as once.
func Dedup(records []models.NovelaRecord) []models.NovelaRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.NovelaRecord, 0, len(records))
	for _, rec := range records {
		key := similarity.NormalizeKey(rec.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// AssignIDs gives every record a content-hash ID derived from its normalized
// title, so the ID is stable across runs. A hash collision between distinct
// keys within one run gets a sequence suffix as tie-breaker.
func AssignIDs(records []models.NovelaRecord) {
	used := make(map[string]int, len(records))
	for i := range records {
		id := contentID(similarity.NormalizeKey(records[i].Title))
		if n := used[id]; n > 0 {
			records[i].ID = fmt.Sprintf("%s-%d", id, n+1)
		} else {
			records[i].ID = id
		}
		used[id]++
	}
}

func contentID(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
