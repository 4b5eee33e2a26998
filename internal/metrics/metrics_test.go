package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/libman/internal/loan"
)

// CollectorがMetricsRecorderを満たすことをコンパイル時に確認する。
var _ loan.MetricsRecorder = (*Collector)(nil)

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLoanCreated()
	c.RecordLoanReturned()
	c.RecordLoansExpired(3)
	c.RecordBorrowRejected("unavailable")
	c.RecordSweepDuration(120 * time.Millisecond)
	c.RecordHTTPStatus(409)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	for _, want := range []string{
		"libman_loans_created_total 1",
		"libman_loans_returned_total 1",
		"libman_loans_expired_total 3",
		`libman_borrow_rejected_total{reason="unavailable"} 1`,
		"libman_expiry_sweep_duration_seconds",
		`libman_http_status_total{status_code="409"} 1`,
	} {
		if !strings.Contains(bodyStr, want) {
			t.Errorf("response should contain %q", want)
		}
	}
}

// TestNewCollector_RegistersOnce は同一レジストリへの二重登録がパニックすることを確認する。
func TestNewCollector_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("二重登録はパニックするべき")
		}
	}()
	_ = NewCollector(reg)
}
