package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"futsal-sim-service/internal/metrics"
	"futsal-sim-service/internal/testutil"
)

type stubAdvancer struct {
	mu       sync.Mutex
	ids      []string
	listErr  error
	failIDs  map[string]error
	advanced []string
}

func (s *stubAdvancer) UnfinishedGameIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.ids...), nil
}

func (s *stubAdvancer) Advance(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failIDs[gameID]; ok {
		return err
	}
	s.advanced = append(s.advanced, gameID)
	return nil
}

func (s *stubAdvancer) advancedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.advanced...)
}

func newTestPoller(adv Advancer) *Poller {
	logger, _ := testutil.NewBufferLogger()
	return New(adv, logger, metrics.NewRecorder(), time.Minute)
}

func TestSweepAdvancesEveryUnfinishedMatch(t *testing.T) {
	adv := &stubAdvancer{ids: []string{"g1", "g2", "g3"}}
	p := newTestPoller(adv)

	p.sweepOnce(context.Background())

	got := adv.advancedIDs()
	if len(got) != 3 {
		t.Fatalf("advanced %v, want all three", got)
	}

	st := p.Status()
	if !st.IsReady() {
		t.Fatalf("status not ready after clean sweep: %+v", st)
	}
	if st.ConsecutiveFailures != 0 || st.LastError != "" {
		t.Fatalf("status = %+v", st)
	}
}

func TestSweepListFailureMarksUnhealthy(t *testing.T) {
	adv := &stubAdvancer{listErr: errors.New("store down")}
	p := newTestPoller(adv)

	p.sweepOnce(context.Background())

	st := p.Status()
	if st.ConsecutiveFailures != 1 {
		t.Fatalf("failures = %d, want 1", st.ConsecutiveFailures)
	}
	if st.LastError != "store down" {
		t.Fatalf("lastError = %q", st.LastError)
	}
	if st.IsReady() {
		t.Fatal("ready despite never succeeding")
	}
}

func TestSweepContinuesPastFailingMatch(t *testing.T) {
	adv := &stubAdvancer{
		ids:     []string{"g1", "g2", "g3"},
		failIDs: map[string]error{"g2": errors.New("conflict")},
	}
	p := newTestPoller(adv)

	p.sweepOnce(context.Background())

	got := adv.advancedIDs()
	if len(got) != 2 || got[0] != "g1" || got[1] != "g3" {
		t.Fatalf("advanced %v, want g1 and g3", got)
	}
	if p.Status().ConsecutiveFailures != 1 {
		t.Fatalf("failures = %d, want 1", p.Status().ConsecutiveFailures)
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	adv := &stubAdvancer{listErr: errors.New("store down")}
	p := newTestPoller(adv)

	p.sweepOnce(context.Background())
	p.sweepOnce(context.Background())

	adv.mu.Lock()
	adv.listErr = nil
	adv.mu.Unlock()
	p.sweepOnce(context.Background())

	st := p.Status()
	if st.ConsecutiveFailures != 0 || st.LastError != "" {
		t.Fatalf("status after recovery = %+v", st)
	}
	if !st.IsReady() {
		t.Fatal("not ready after recovery")
	}
}

func TestStatusReadiness(t *testing.T) {
	var s Status
	if s.IsReady() {
		t.Fatal("zero status ready")
	}

	s.LastSuccess = time.Now()
	if !s.IsReady() {
		t.Fatal("status with success not ready")
	}

	s.ConsecutiveFailures = 3
	if s.IsReady() {
		t.Fatal("ready despite repeated failures")
	}
}

func TestStartAndStop(t *testing.T) {
	adv := &stubAdvancer{ids: []string{"g1"}}
	logger, _ := testutil.NewBufferLogger()
	p := New(adv, logger, metrics.NewRecorder(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	deadline := time.After(time.Second)
	for len(adv.advancedIDs()) == 0 {
		select {
		case <-deadline:
			t.Fatal("poller never swept")
		case <-time.After(time.Millisecond):
		}
	}

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("repeated stop: %v", err)
	}
}
