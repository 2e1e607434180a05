package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"bondpulse/internal/shared/testutil"
	"bondpulse/pkg/contracts/domain"
)

// ChartFlowTestSuite drives the chart API end to end: load, query, reload.
type ChartFlowTestSuite struct {
	suite.Suite
	app    *Application
	server *httptest.Server
}

func (s *ChartFlowTestSuite) SetupTest() {
	s.app = newTestApp(s.T(), testConfig(s.T(), "ZN", "ZB"))
	s.Require().NoError(s.app.LoadTables(context.Background()))
	s.server = httptest.NewServer(s.app.Router)
}

func (s *ChartFlowTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ChartFlowTestSuite) chart(ticker, query string) *domain.ChartResponse {
	resp, err := http.Get(s.server.URL + "/api/tickers/" + ticker + "/chart-data?" + query)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var envelope struct {
		Status string               `json:"status"`
		Data   domain.ChartResponse `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	s.Equal("success", envelope.Status)
	return &envelope.Data
}

func (s *ChartFlowTestSuite) TestCalendarSelection() {
	got := s.chart("ZN", "selection_mode=calendar&start_date=2025-10-01&agg_mode=selected")

	s.True(got.HasData)
	s.Equal("ZN", got.Ticker)
	s.Require().Len(got.Traces, 1)

	trace := got.Traces[0]
	s.Equal("2025-10-01 - Wednesday", trace.Name)
	s.Require().Len(trace.Y, 3)
	s.InDelta(0.0, *trace.Y[0], 1e-9)
	s.InDelta(0.5, *trace.Y[1], 1e-9)
	s.InDelta(-0.5, *trace.Y[2], 1e-9)

	s.Require().NotNil(got.Aggregate)
	s.Len(got.Aggregate.Mean, 3)
	s.Nil(got.Aggregate.SD[0], "one session has no sample deviation")

	s.Equal(1, got.Stats.Days)
	s.Contains(got.Stats.Description, "Days: 1")
	s.Contains(got.Stats.Description, "SD: 0.5000")
}

func (s *ChartFlowTestSuite) TestWeekdaySelectionWithoutAggregate() {
	got := s.chart("zb", "selection_mode=weekday&weekdays=Wednesday,Thursday&agg_mode=none")

	s.True(got.HasData)
	s.Len(got.Traces, 2)
	s.Nil(got.Aggregate)
	s.True(strings.HasPrefix(got.Stats.Description, "Showing 2 individual day(s)"))
}

func (s *ChartFlowTestSuite) TestWeekdayAggregateNeedsSingleWeekday() {
	got := s.chart("ZN", "selection_mode=weekday&weekdays=Wednesday,Thursday&agg_mode=weekday")

	s.True(got.HasData)
	s.Nil(got.Aggregate)
	s.Equal("Selected 2 day(s)", got.Stats.Description)
}

func (s *ChartFlowTestSuite) TestReloadPicksUpRewrittenFile() {
	path := filepath.Join(s.app.Config.Data.Dir, "ZN.csv")
	rewritten := strings.Replace(testutil.TwoSessionCSV, "2025-10-01 19:00:00,110-16", "2025-10-01 19:00:00,111-00", 1)
	s.Require().NoError(os.WriteFile(path, []byte(rewritten), 0o644))

	before := s.chart("ZN", "selection_mode=calendar&start_date=2025-10-01")
	s.InDelta(0.5, *before.Traces[0].Y[1], 1e-9, "tables are not re-read until reloaded")

	resp, err := http.Post(s.server.URL+"/api/tickers/ZN/reload", "application/json", nil)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	after := s.chart("ZN", "selection_mode=calendar&start_date=2025-10-01")
	s.InDelta(1.0, *after.Traces[0].Y[1], 1e-9)

	other := s.chart("ZB", "selection_mode=calendar&start_date=2025-10-01")
	s.InDelta(0.5, *other.Traces[0].Y[1], 1e-9, "reload touches one ticker only")
}

func (s *ChartFlowTestSuite) TestReloadUnknownTicker() {
	resp, err := http.Post(s.server.URL+"/api/tickers/TY/reload", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
	var problem map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	s.Equal("TICKER_NOT_FOUND", problem["error_code"])
}

func TestChartFlowTestSuite(t *testing.T) {
	suite.Run(t, new(ChartFlowTestSuite))
}
