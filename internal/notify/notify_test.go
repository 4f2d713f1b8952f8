package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/profiler"
)

type recorder struct {
	mu       sync.Mutex
	contents []string
}

func (r *recorder) Notify(_, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contents = append(r.contents, content)
}

func TestWatchProfile(t *testing.T) {
	ch := make(chan profiler.Profile, 8)
	for _, p := range []profiler.Profile{profiler.Unknown, profiler.EV, profiler.EV, profiler.PHEV, profiler.Unknown} {
		ch <- p
	}
	close(ch)

	rec := &recorder{}
	if err := WatchProfile(context.Background(), ch, rec); err != nil {
		t.Fatal(err)
	}
	want := []string{"Vehicle profile detected: EV", "Vehicle profile detected: PHEV"}
	if diff := cmp.Diff(want, rec.contents); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}
}

func TestWatchProfileStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WatchProfile(ctx, make(chan profiler.Profile), &recorder{}); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPermissionsMissing(t *testing.T) {
	rec := &recorder{}
	PermissionsMissing(rec, nil)
	if len(rec.contents) != 0 {
		t.Fatalf("unexpected notification: %v", rec.contents)
	}
	PermissionsMissing(rec, []permission.Permission{permission.CarSpeed, permission.CarMileage})
	if diff := cmp.Diff([]string{"Grant on your phone: CAR_SPEED, CAR_MILEAGE"}, rec.contents); diff != "" {
		t.Errorf("notification (-want +got):\n%s", diff)
	}
}
