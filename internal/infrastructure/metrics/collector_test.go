package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Retiros(t *testing.T) {
	c := NewCollector(false)
	c.ObserveWithdrawal("ok", 20*time.Millisecond)
	c.ObserveWithdrawal("ok", 30*time.Millisecond)
	c.ObserveWithdrawal("insufficient_stock", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.withdrawals.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.withdrawals.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.withdrawalDuration), "un solo histograma")
}

func TestCollector_Cuadricula(t *testing.T) {
	c := NewCollector(false)
	c.ObserveGridOperation("move", "ok", 3)
	c.ObserveGridOperation("move", "column_full", 0)
	c.ObserveGridOperation("compact_row", "ok", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.gridOperations.WithLabelValues("move", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gridOperations.WithLabelValues("move", "column_full")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.cellsMoved.WithLabelValues("move")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.cellsMoved), "compactación sin movimientos no crea serie")
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(false)
	c.ObserveReturn("ok")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `almacen_returns_total{outcome="ok"} 1`))
}
