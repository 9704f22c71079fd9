package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveTransition(t *testing.T) {
	m := New()
	m.ObserveTransition("refine", OutcomeSuccess, 120*time.Millisecond)
	m.ObserveTransition("refine", OutcomeFailure, time.Second)
	m.ObserveTransition("refine", OutcomeSuccess, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("refine", OutcomeSuccess)); got != 2 {
		t.Fatalf("success transitions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("refine", OutcomeFailure)); got != 1 {
		t.Fatalf("failure transitions = %v, want 1", got)
	}
}

func TestMetrics_TrackInFlight(t *testing.T) {
	m := New()
	done := m.TrackInFlight()
	if got := testutil.ToFloat64(m.CallsInFlight); got != 1 {
		t.Fatalf("in flight = %v, want 1", got)
	}
	done()
	if got := testutil.ToFloat64(m.CallsInFlight); got != 0 {
		t.Fatalf("in flight = %v, want 0", got)
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTransition("create", OutcomeSuccess, time.Second)
	m.RejectBusy("refine")
	m.ValidationFailed("submit")
	m.ObserveSubmission(OutcomeSuccess)
	m.ObserveHTTP("GET", "/", "200", time.Millisecond)
	m.TrackInFlight()()
}

func TestMetrics_HandlerExposesPrivateRegistry(t *testing.T) {
	m := New()
	m.RejectBusy("publish")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `formchat_busy_rejected_total{transition="publish"} 1`) {
		t.Fatalf("expected busy counter in exposition, got:\n%s", body)
	}
}
