package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDBQuery_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op", "test_table"))
	ObserveDBQuery("test_op", "test_table", time.Now(), nil)
	ObserveDBQuery("test_op", "test_table", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test_op", "test_table"))
	assert.Equal(t, before+1, after)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(304))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(502))
}
