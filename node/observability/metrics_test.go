package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/health", "200"))
	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/health", "200")))

	RecordAuditViolation("token_count")
	assert.GreaterOrEqual(t, testutil.ToFloat64(auditViolations.WithLabelValues("token_count")), float64(1))

	SetCheckpointBlock(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(checkpointBlock))

	RecordGRPCRequest("/marketplace.LedgerService/Mint", "OK", time.Millisecond)
	RecordRevert("PolicyViolation")
	SetBlockNumber(3)
	SetEventSubscribers(1)
}
