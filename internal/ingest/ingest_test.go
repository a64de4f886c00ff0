package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/pardot-insights/internal/config"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/report"
	"github.com/AngelCh415/pardot-insights/internal/store"
	"github.com/AngelCh415/pardot-insights/internal/utils"
)

const sampleSnapshot = `{
  "id": "snap-42",
  "emailSends": [{"id": 101, "name": "Launch", "sentAt": "2024-05-30 10:00:00",
    "stats": {"sent": 100, "delivered": 95, "opens": 20, "clicks": 3, "bounces": 5, "hardBounces": 2, "softBounces": 3, "unsubscribes": 1}}],
  "forms": [{"id": "f1", "views": 40, "submissions": 10, "lastActivity": "2024-05-01T08:00:00Z"},
            {"id": "f2", "views": 10, "submissions": 2, "abandoned": 7, "lastActivity": null}],
  "landingPages": [{"id": 7, "name": "Promo", "url": " https://x.io/p ", "recentActivityCount": 2, "totalActivityCount": 5, "lastActivityAt": "2024-05-20"}],
  "prospects": [{"id": 1, "email": "a@x.com", "score": 10, "utm_source": "google", "utm": {"source": "ignored", "medium": "cpc"}},
                {"email": "b@x.com", "lastActivityAt": "garbage"}],
  "campaigns": [{"id": "c1", "engagementScore": 3.5, "emailSends": [{"id": "e1", "sentAt": "2024-05-30"}]}],
  "programs": [{"id": "ep1", "status": "active"}, {"id": "ep2", "status": "draft"}]
}`

func newIngestor(t *testing.T, c HTTPClient, cfg config.Config) (*Ingestor, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(time.Minute)
	in := NewIngestor(c, st, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	in.backoff = utils.NewBackoff(time.Millisecond, 2)
	in.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return in, st
}

// helper: hace la petición y devuelve código HTTP + error de red (si hubo)
func fetchURL(c HTTPClient, url string) (int, error) {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func TestHTTPClientHandlesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := fetchURL(NewHTTPClient(50*time.Millisecond), srv.URL)
	assert.Error(t, err)
}

func TestLoadNormalizesWireFormat(t *testing.T) {
	in, st := newIngestor(t, nil, config.Config{})
	snap, fresh, err := in.Load(strings.NewReader(sampleSnapshot))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "snap-42", snap.ID)

	e := snap.EmailSends[0]
	assert.Equal(t, "101", e.ID)
	assert.Equal(t, time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC), e.SentAt)
	assert.Equal(t, 2, e.Stats.HardBounces)

	assert.Equal(t, 30, snap.Forms[0].Abandoned, "abandoned defaults to views - submissions")
	assert.Equal(t, 7, snap.Forms[1].Abandoned)
	assert.Nil(t, snap.Forms[1].LastActivity)

	lp := snap.LandingPages[0]
	assert.Equal(t, "7", lp.ID)
	assert.Equal(t, "https://x.io/p", lp.URL)
	require.NotNil(t, lp.LastActivityAt)

	p := snap.Prospects[0]
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "google", *p.UTM.Source)
	assert.Equal(t, "cpc", *p.UTM.Medium)
	assert.Nil(t, p.UTM.Term)
	assert.Nil(t, snap.Prospects[1].LastActivityAt)

	assert.Equal(t, 3.5, *snap.Campaigns[0].EngagementScore)
	assert.Len(t, snap.Campaigns[0].EmailSends, 1)
	assert.Equal(t, models.ProgramRunning, snap.Programs[0].Status)
	assert.Equal(t, models.ProgramUnknown, snap.Programs[1].Status)

	cur, v := st.Current()
	assert.Same(t, snap, cur)
	assert.Equal(t, uint64(1), v)

	_, fresh, err = in.Load(strings.NewReader(sampleSnapshot))
	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestLoadAssignsIDAndRejectsGarbage(t *testing.T) {
	in, _ := newIngestor(t, nil, config.Config{})
	a, _, err := in.Load(strings.NewReader(`{"prospects": []}`))
	require.NoError(t, err)
	b, _, err := in.Load(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	_, _, err = in.Load(strings.NewReader(`{"forms": "nope"`))
	assert.ErrorContains(t, err, "decode snapshot")
}

func TestRunRetriesTemporaryFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, sampleSnapshot)
	}))
	defer srv.Close()

	in, _ := newIngestor(t, NewHTTPClient(2*time.Second), config.Config{SnapshotURL: srv.URL})
	snap, fresh, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "snap-42", snap.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRunDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	in, _ := newIngestor(t, NewHTTPClient(2*time.Second), config.Config{SnapshotURL: srv.URL})
	_, _, err := in.Run(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRunNeedsURL(t *testing.T) {
	in, _ := newIngestor(t, nil, config.Config{})
	_, _, err := in.Run(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotConfigured)
}

func TestExportTableSignsPayload(t *testing.T) {
	var got exportPayload
	var sig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sig = r.Header.Get("X-Signature")
		assert.Equal(t, Sign("s3cret", body), sig)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	in, _ := newIngestor(t, NewHTTPClient(2*time.Second), config.Config{SinkURL: srv.URL, SinkSecret: "s3cret"})
	tbl := &report.Table{Name: "utm_issues", Columns: []string{"id"}, Rows: []report.Row{{"id": "1"}, {"id": "2"}}}
	n, err := in.ExportTable(context.Background(), "snap-1", tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "utm_issues", got.Table)
	assert.Equal(t, "snap-1", got.SnapshotID)
	assert.Len(t, got.Rows, 2)
	assert.Len(t, sig, 64)
}

func TestExportTableGuards(t *testing.T) {
	in, _ := newIngestor(t, nil, config.Config{})
	_, err := in.ExportTable(context.Background(), "s", &report.Table{})
	assert.ErrorIs(t, err, ErrSinkNotConfigured)

	in, _ = newIngestor(t, nil, config.Config{SinkURL: "http://sink", SinkSecret: "x"})
	n, err := in.ExportTable(context.Background(), "s", &report.Table{Name: "empty"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

type mockClient struct{ mock.Mock }

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func TestExportTableSinkFailures(t *testing.T) {
	cfg := config.Config{SinkURL: "http://sink.local/hook", SinkSecret: "x"}
	tbl := &report.Table{Name: "t", Columns: []string{"a"}, Rows: []report.Row{{"a": 1}}}

	mc := &mockClient{}
	mc.On("Do", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	in, _ := newIngestor(t, mc, cfg)
	_, err := in.ExportTable(context.Background(), "s", tbl)
	assert.EqualError(t, err, "connection refused")
	mc.AssertExpectations(t)

	mc = &mockClient{}
	mc.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		return r.Method == http.MethodPost && r.Header.Get("X-Signature") != ""
	})).Return(&http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader("down"))}, nil).Once()
	in, _ = newIngestor(t, mc, cfg)
	_, err = in.ExportTable(context.Background(), "s", tbl)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "down", se.Body)
	mc.AssertExpectations(t)
}
