/*
scheduler.go - Automated monthly due generation

PURPOSE:
  Periodically walks all students and persists the FEE_DUE rows that have
  become chargeable since the last pass. Generation is idempotent, so the
  scheduler can run as often as it likes; a month is only ever charged once.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Each pass snapshots one student at a time and calls the engine
  - Students with no fee-rate history are skipped with a warning, not an
    abort: one broken record must not starve the rest

CONFIGURATION:
  - CheckInterval: How often to run a pass (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewDueScheduler(store)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - tuition/engine.go: GenerateDueEntries
  - handlers.go: GenerateDues (the manual trigger)
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/store/sqlite"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// DueScheduler generates monthly tuition dues in the background.
type DueScheduler struct {
	Store         *sqlite.Store
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDueScheduler creates a new scheduler.
func NewDueScheduler(store *sqlite.Store) *DueScheduler {
	return &DueScheduler{
		Store:         store,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DueScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Scheduler] Started with check interval: %v", ds.CheckInterval)
}

// Stop stops the scheduler.
func (ds *DueScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ds *DueScheduler) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.generateAll(time.Now().UTC())

	for {
		select {
		case <-ds.ticker.C:
			ds.generateAll(time.Now().UTC())
		case <-ds.stop:
			return
		}
	}
}

// generateAll runs one pass over every student as of the given time.
func (ds *DueScheduler) generateAll(asOf time.Time) {
	ctx := context.Background()

	students, err := ds.Store.ListStudents(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing students: %v", err)
		return
	}

	generatedCount := 0
	for _, student := range students {
		n, err := ds.generateFor(ctx, student.ID, asOf)
		if err != nil {
			if errors.Is(err, ledger.ErrNoRateHistory) {
				log.Printf("[Scheduler] Skipping %s: no fee-rate history", student.ID)
			} else {
				log.Printf("[Scheduler] Error generating dues for %s: %v", student.ID, err)
			}
			continue
		}
		generatedCount += n
	}

	if generatedCount > 0 {
		log.Printf("[Scheduler] Completed: %d dues generated across %d students",
			generatedCount, len(students))
	}
}

func (ds *DueScheduler) generateFor(ctx context.Context, studentID string, asOf time.Time) (int, error) {
	snap, err := ds.Store.TuitionSnapshot(ctx, studentID)
	if err != nil {
		return 0, err
	}

	generated, err := tuition.GenerateDueEntries(snap, asOf)
	if err != nil {
		return 0, err
	}
	if len(generated) == 0 {
		return 0, nil
	}

	if _, err := ds.Store.AppendEntries(ctx, generated); err != nil {
		// A concurrent manual trigger may have charged the month first.
		// The next pass picks up anything still missing.
		if errors.Is(err, ledger.ErrDuplicateFeeDue) {
			return 0, nil
		}
		return 0, err
	}
	return len(generated), nil
}

// RunNow triggers an immediate pass (for testing/admin).
func (ds *DueScheduler) RunNow(asOf time.Time) {
	ds.generateAll(asOf)
}
