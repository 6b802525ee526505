// Package queue decides which trades from a polled batch deserve a
// notification. It filters by author role and username, then runs every
// surviving record through the persistent store so a trade is announced once
// when it opens and once when it closes, no matter how many polling cycles
// see it.
package queue

import (
	"fmt"
	"time"

	"github.com/thetawatch/thetawatch/internal/logger"
	"github.com/thetawatch/thetawatch/internal/models"
	"github.com/thetawatch/thetawatch/internal/storage"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

// Store is the persistence the queue needs for change detection.
type Store interface {
	Transition(guid, status string, fresh bool) (storage.Outcome, error)
}

// Detection is one record that should be announced, paired with the status
// that was recorded for it.
type Detection struct {
	Record models.Trade
	Status string
}

// Queue filters and deduplicates polled trade batches.
type Queue struct {
	store        Store
	registry     *tradespec.Registry
	allowedRoles map[string]bool
	skippedUsers map[string]bool
	maxAge       time.Duration

	// Now is replaceable in tests.
	Now func() time.Time
}

// New builds a queue. allowedRoles and skippedUsers are matched exactly
// against the record's user fields. The registry gates admission: records the
// downstream classifier would reject must not be marked seen here.
func New(store Store, registry *tradespec.Registry, allowedRoles, skippedUsers []string, maxAge time.Duration) *Queue {
	roles := make(map[string]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		roles[role] = true
	}
	users := make(map[string]bool, len(skippedUsers))
	for _, user := range skippedUsers {
		users[user] = true
	}
	return &Queue{
		store:        store,
		registry:     registry,
		allowedRoles: roles,
		skippedUsers: users,
		maxAge:       maxAge,
		Now:          time.Now,
	}
}

// Process takes one polled batch, newest first as the API returns it, and
// returns the records to announce in the order they happened. A store error
// aborts the whole batch; the next cycle retries it from scratch.
func (q *Queue) Process(batch []models.Trade) ([]Detection, error) {
	var detections []Detection

	// The API returns newest first. Walk the batch backwards so a trade
	// that closed and reopened between two polls (a rolled contract) is
	// announced in the order it happened.
	for i := len(batch) - 1; i >= 0; i-- {
		record := batch[i]

		if !q.allowedRoles[record.User.Role] {
			logger.Debug("Skipping trade %s: role %q not allowed", record.GUID, record.User.Role)
			continue
		}
		if q.skippedUsers[record.User.Username] {
			logger.Debug("Skipping trade %s: user %s is skipped", record.GUID, record.User.Username)
			continue
		}
		if record.Mistake {
			logger.Debug("Skipping trade %s: flagged as mistake", record.GUID)
			continue
		}
		if err := record.Validate(); err != nil {
			logger.Warn("Dropping malformed trade %s: %v", record.GUID, err)
			continue
		}
		// A record the classifier cannot handle stays unseen, so it is
		// retried on every poll until the upstream data is fixed.
		if _, err := q.registry.Lookup(record.Type); err != nil {
			logger.Warn("Dropping trade %s: %v", record.GUID, err)
			continue
		}

		status := record.Status()
		outcome, err := q.store.Transition(record.GUID, status, q.isFresh(record))
		if err != nil {
			return nil, fmt.Errorf("failed to process batch: %w", err)
		}

		switch outcome {
		case storage.OutcomeNew, storage.OutcomeStatusChanged:
			detections = append(detections, Detection{Record: record, Status: status})
		case storage.OutcomeStale:
			// First sighting of an old trade, which happens when a site
			// migration touches updatedAt on historical rows. Record nothing
			// and stay quiet instead of replaying history.
			logger.Debug("Skipping trade %s: older than %s and never seen", record.GUID, q.maxAge)
		case storage.OutcomeUnchanged:
			// Already announced in this status.
		}
	}

	return detections, nil
}

// isFresh reports whether a record is recent enough to announce on first
// sight. Records without a parseable update time pass the guard.
func (q *Queue) isFresh(record models.Trade) bool {
	if record.UpdatedAt == "" {
		return true
	}
	updated, err := models.ParseTimestamp(record.UpdatedAt)
	if err != nil {
		return true
	}
	return q.Now().Sub(updated) <= q.maxAge
}
