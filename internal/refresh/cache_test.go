package refresh

import (
	"strconv"
	"sync"
	"testing"

	"github.com/kitebird-capital/terminal/internal/domain"
)

func TestCacheEmpty(t *testing.T) {
	c := NewCache()

	snap, ok := c.Get()
	if ok {
		t.Fatal("want ok=false before first publish")
	}
	if snap != nil {
		t.Fatalf("want nil snapshot, got %+v", snap)
	}
}

func TestCachePublishGet(t *testing.T) {
	c := NewCache()
	want := &domain.Snapshot{CycleID: "cycle-1"}

	c.Publish(want)

	got, ok := c.Get()
	if !ok {
		t.Fatal("want ok=true after publish")
	}
	if got != want {
		t.Fatalf("want the published pointer back, got %p vs %p", got, want)
	}
}

func TestCacheConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	c := NewCache()
	c.Publish(snapshotFor(0))

	const (
		writers = 1
		readers = 8
		cycles  = 500
	)

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(writers)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 1; i <= cycles; i++ {
			c.Publish(snapshotFor(i))
		}
	}()

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap, ok := c.Get()
				if !ok {
					t.Error("reader observed empty cache after first publish")
					return
				}
				// Every field of a snapshot must belong to the same cycle;
				// a mix would mean readers saw a half-written state.
				if snap.Funding.Error != snap.CycleID || snap.Arbitrage.Error != snap.CycleID {
					t.Errorf("torn snapshot: cycle %q funding %q arbitrage %q",
						snap.CycleID, snap.Funding.Error, snap.Arbitrage.Error)
					return
				}
			}
		}()
	}

	wg.Wait()
}

// snapshotFor tags every section with the cycle ID so readers can detect a
// torn snapshot.
func snapshotFor(i int) *domain.Snapshot {
	id := "cycle-" + strconv.Itoa(i)
	return &domain.Snapshot{
		CycleID:   id,
		Funding:   domain.FundingSection{Error: id},
		Arbitrage: domain.ArbitrageSection{Error: id},
	}
}
