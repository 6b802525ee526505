package queue

import (
	"testing"
	"time"

	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/storage"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

var testNow = time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestQueue(t *testing.T) (*Queue, *storage.Store) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry, err := tradespec.NewRegistry()
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	q := New(store, registry, []string{"patron", "joonie"}, []string{"ignoredguy"}, 24*time.Hour)
	q.Now = func() time.Time { return testNow }
	return q, store
}

func patronTrade(guid string) models.Trade {
	return models.Trade{
		GUID:      guid,
		Type:      "CASH SECURED PUT",
		Symbol:    "SPY",
		Quantity:  1,
		UpdatedAt: "2023-02-01T11:00:00.000Z",
		User:      models.User{Username: "testuser", Role: "patron"},
	}
}

func TestProcessNewTrade(t *testing.T) {
	q, _ := newTestQueue(t)

	detections, err := q.Process([]models.Trade{patronTrade("guid-1")})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	if detections[0].Record.GUID != "guid-1" || detections[0].Status != models.StatusOpen {
		t.Errorf("Unexpected detection: %+v", detections[0])
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	q, _ := newTestQueue(t)
	batch := []models.Trade{patronTrade("guid-1")}

	if _, err := q.Process(batch); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	detections, err := q.Process(batch)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("Second identical batch must emit nothing, got %d", len(detections))
	}
}

func TestOpenToClosedEmitsExactlyTwice(t *testing.T) {
	q, _ := newTestQueue(t)

	open := patronTrade("guid-1")
	if detections, _ := q.Process([]models.Trade{open}); len(detections) != 1 {
		t.Fatal("Expected the open trade to be emitted")
	}

	closed := patronTrade("guid-1")
	closed.CloseDate = "2023-02-01T11:30:00.000Z"

	detections, err := q.Process([]models.Trade{closed})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("Expected the close to be emitted once, got %d", len(detections))
	}
	if detections[0].Status != models.StatusClosed {
		t.Errorf("Status = %q, want closed", detections[0].Status)
	}

	// Re-polling the closed trade stays quiet.
	detections, _ = q.Process([]models.Trade{closed})
	if len(detections) != 0 {
		t.Errorf("Expected no further emissions, got %d", len(detections))
	}
}

func TestStalenessGuard(t *testing.T) {
	q, _ := newTestQueue(t)

	stale := patronTrade("guid-old")
	stale.UpdatedAt = "2022-12-20T11:00:00.000Z"

	detections, err := q.Process([]models.Trade{stale})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("Stale unseen trade must not be emitted, got %d", len(detections))
	}

	// Still not emitted on the next cycle either.
	detections, _ = q.Process([]models.Trade{stale})
	if len(detections) != 0 {
		t.Errorf("Stale trade emitted on repoll, got %d", len(detections))
	}
}

func TestFilters(t *testing.T) {
	q, _ := newTestQueue(t)

	nonPatron := patronTrade("guid-role")
	nonPatron.User.Role = "member"

	skipped := patronTrade("guid-skip")
	skipped.User.Username = "ignoredguy"

	mistake := patronTrade("guid-mistake")
	mistake.Mistake = true

	malformed := patronTrade("guid-malformed")
	malformed.Symbol = ""

	detections, err := q.Process([]models.Trade{nonPatron, skipped, mistake, malformed})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("Expected all records filtered, got %d", len(detections))
	}
}

func TestBatchOrderAndMixedRecords(t *testing.T) {
	q, _ := newTestQueue(t)

	// Seed a previously seen open trade so its close flips status.
	seen := patronTrade("guid-flip")
	if _, err := q.Process([]models.Trade{seen}); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	fresh := patronTrade("guid-new")

	staleTrade := patronTrade("guid-stale")
	staleTrade.UpdatedAt = "2022-12-23T11:00:00.000Z"

	flipped := patronTrade("guid-flip")
	flipped.CloseDate = "2023-02-01T11:30:00.000Z"

	nonPatron := patronTrade("guid-role")
	nonPatron.User.Role = "member"

	// Newest first, as the API delivers.
	batch := []models.Trade{nonPatron, flipped, staleTrade, fresh}

	detections, err := q.Process(batch)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("Expected 2 detections, got %d", len(detections))
	}
	// Oldest first on output.
	if detections[0].Record.GUID != "guid-new" {
		t.Errorf("detections[0] = %s, want guid-new", detections[0].Record.GUID)
	}
	if detections[1].Record.GUID != "guid-flip" || detections[1].Status != models.StatusClosed {
		t.Errorf("detections[1] = %s/%s, want guid-flip/closed", detections[1].Record.GUID, detections[1].Status)
	}
}

func TestUnknownTypeStaysUnseen(t *testing.T) {
	q, store := newTestQueue(t)

	record := patronTrade("guid-odd")
	record.Type = "CALENDAR SPREAD"

	detections, err := q.Process([]models.Trade{record})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 0 {
		t.Fatalf("Unclassifiable record must not be emitted, got %d", len(detections))
	}
	if exists, _ := store.Exists("guid-odd"); exists {
		t.Error("Unclassifiable record must not be marked seen")
	}

	// Once the upstream data is fixed, the next poll picks it up.
	record.Type = "CASH SECURED PUT"
	detections, err = q.Process([]models.Trade{record})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 1 {
		t.Errorf("Corrected record must be emitted, got %d detections", len(detections))
	}
}

func TestMissingUpdatedAtPassesGuard(t *testing.T) {
	q, _ := newTestQueue(t)

	record := patronTrade("guid-1")
	record.UpdatedAt = ""

	detections, err := q.Process([]models.Trade{record})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(detections) != 1 {
		t.Errorf("Record without updatedAt must pass the guard, got %d detections", len(detections))
	}
}
