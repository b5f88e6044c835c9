package overview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sofischeduler/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEndToEnd_ChartHasTwoBars(t *testing.T) {
	b := testutil.NewBackend(t, http.StatusOK, testutil.OneRunJSON)

	run, ok, err := b.Loader.Latest(context.Background())
	require.NoError(t, err)
	c := buildContent(run, ok, err)

	require.Len(t, c.Chart.Chart.Bars, 2)
	assert.Equal(t, "D1", c.Chart.Chart.Bars[0].Label)
	assert.Equal(t, "D2", c.Chart.Chart.Bars[1].Label)
	for _, bar := range c.Chart.Chart.Bars {
		assert.Equal(t, 1, bar.Value)
	}
	assert.Equal(t, 1, c.Stats.TotalSchedule)
	assert.Equal(t, "1.00", c.Stats.AvgPerFieldText())
}

func TestEndToEnd_BackendFailureShowsServerText(t *testing.T) {
	b := testutil.NewBackend(t, http.StatusInternalServerError, "db down")

	run, ok, err := b.Loader.Latest(context.Background())
	assert.Contains(t, buildContent(run, ok, err).Error, "db down")
	assert.Contains(t, buildChart(run, ok, err).Error, "db down")

	h := NewHandler(b.Loader, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ServeChartJSON(rec, httptest.NewRequest(http.MethodGet, "/overview/chart.json", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "db down")
}
