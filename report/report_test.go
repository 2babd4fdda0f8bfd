package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trafficcount "github.com/swdee/go-trafficcount"
	"github.com/swdee/go-trafficcount/traffic"
)

func init() {
	trafficcount.SetLogger(nil)
}

func testReport(start time.Time, car, bike int, bayes, markov traffic.State) trafficcount.WindowReport {
	return trafficcount.WindowReport{
		WindowSummary: traffic.WindowSummary{
			Start: start,
			End:   start.Add(10 * time.Second),
			WindowTotals: traffic.WindowTotals{
				PerType: map[string]int{"car": car, "motorbike": bike},
				Total:   car + bike,
			},
		},
		Hour:   start.Hour(),
		Bayes:  bayes,
		Markov: markov,
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "counts.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NotEmpty(t, store.Session())

	start := time.Date(2024, 5, 1, 17, 30, 0, 0, time.UTC)
	want := []trafficcount.WindowReport{
		testReport(start, 3, 1, traffic.Light, traffic.Light),
		testReport(start.Add(10*time.Second), 10, 4, traffic.Heavy, traffic.Moderate),
	}

	for _, r := range want {
		store.OnWindow(r)
	}

	got, err := store.Windows(store.Session())
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("windows mismatch (-want +got):\n%s", diff)
	}

	other, err := store.Windows("another-session")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStoreSessionsShareFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shared.db")
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Record(testReport(start, 1, 0, traffic.Light, traffic.Light)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	assert.NotEqual(t, first.Session(), second.Session())

	got, err := second.Windows(first.Session())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Total)
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var lines []string

	sink := LogSink{Logf: func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	}}

	sink.OnWindow(testReport(time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC), 2, 1,
		traffic.Light, traffic.Moderate))

	assert.Equal(t, []string{
		"--- window 14:00:00 to 14:00:10 ---",
		"car: 2",
		"motorbike: 1",
		"total: 3",
		"bayes (hour 14): light",
		"markov: moderate",
	}, lines)
}

func TestMultiSinkAndRecorder(t *testing.T) {
	t.Parallel()

	a, b := &Recorder{}, &Recorder{}
	multi := MultiSink{a, b}

	r := testReport(time.Unix(0, 0).UTC(), 1, 1, traffic.Light, traffic.Light)
	multi.OnWindow(r)
	multi.OnWindow(r)

	assert.Len(t, a.Reports(), 2)
	assert.Len(t, b.Reports(), 2)
	assert.Equal(t, 2, b.Reports()[1].Total)
}

func TestWriteChart(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	reports := []trafficcount.WindowReport{
		testReport(start, 3, 1, traffic.Light, traffic.Light),
		testReport(start.Add(10*time.Second), 9, 5, traffic.Heavy, traffic.Moderate),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, reports))

	html := buf.String()

	assert.Contains(t, html, "Traffic Count")
	assert.Contains(t, html, "Vehicles per window")
	assert.Contains(t, html, "motorbike")
	assert.Contains(t, html, "total")
	assert.Contains(t, html, "08:00:20")
}

func TestWriteChartEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, nil))
	assert.Contains(t, buf.String(), "no windows")
}

func TestHubBroadcast(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.OnWindow(testReport(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), 4, 2,
		traffic.Light, traffic.Moderate))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string `json:"type"`
		Data struct {
			Total   int            `json:"total"`
			PerType map[string]int `json:"per_type"`
			Bayes   string         `json:"bayes"`
			Markov  string         `json:"markov"`
		} `json:"data"`
	}

	require.NoError(t, json.Unmarshal(msg, &got))

	assert.Equal(t, "window", got.Type)
	assert.Equal(t, 6, got.Data.Total)
	assert.Equal(t, 4, got.Data.PerType["car"])
	assert.Equal(t, "light", got.Data.Bayes)
	assert.Equal(t, "moderate", got.Data.Markov)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubHandlerReturnsAfterRun(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})

	go func() {
		hub.Run(ctx)
		close(runDone)
	}()

	handlerDone := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeHTTP(w, r)
		close(handlerDone)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return after cancel")
	}

	select {
	case <-handlerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("expected handler to return once the hub stopped")
	}

	assert.Zero(t, hub.ClientCount())
}

func TestHubPublishDropsWhenFull(t *testing.T) {
	t.Parallel()

	hub := NewHub()

	// no Run loop so nothing drains the queue
	for i := 0; i < hubQueueSize+5; i++ {
		hub.Publish("stats", i)
	}

	assert.Len(t, hub.broadcast, hubQueueSize)
}
