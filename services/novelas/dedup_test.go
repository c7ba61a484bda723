package novelas

import (
	"testing"

	"revius/models"
)

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	records := []models.NovelaRecord{
		{Title: "Coração Indomável", Broadcaster: "Televisa"},
		{Title: "Corazon Indomable"}, // distinct key (Spanish spelling)
		{Title: "Coracao Indomavel"}, // same key as the first after diacritic stripping
		{Title: "Avenida Brasil"},
	}

	out := Dedup(records)
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	if out[0].Broadcaster != "Televisa" {
		t.Error("expected first occurrence kept")
	}
}

func TestDedupIdempotent(t *testing.T) {
	records := []models.NovelaRecord{
		{Title: "Alma Gêmea"},
		{Title: "alma gemea"},
		{Title: "Rubí"},
	}

	once := Dedup(records)
	twice := Dedup(once)
	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Title != twice[i].Title {
			t.Errorf("record %d differs: %q vs %q", i, once[i].Title, twice[i].Title)
		}
	}
}

func TestAssignIDsStableAcrossRuns(t *testing.T) {
	a := []models.NovelaRecord{{Title: "Avenida Brasil"}, {Title: "Rubí"}}
	b := []models.NovelaRecord{{Title: "Rubí"}, {Title: "Avenida Brasil"}}

	AssignIDs(a)
	AssignIDs(b)

	if a[0].ID == "" || a[1].ID == "" {
		t.Fatal("IDs not assigned")
	}
	if a[0].ID != b[1].ID || a[1].ID != b[0].ID {
		t.Error("ID should depend only on the normalized title, not run order")
	}
	if a[0].ID == a[1].ID {
		t.Error("distinct titles must get distinct IDs")
	}
}
