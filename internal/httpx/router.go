package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/pardot-insights/internal/engine"
	"github.com/AngelCh415/pardot-insights/internal/ingest"
	"github.com/AngelCh415/pardot-insights/internal/report"
	"github.com/AngelCh415/pardot-insights/internal/store"
	"github.com/AngelCh415/pardot-insights/internal/utils"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

var errNoSnapshot = errors.New("no snapshot loaded")

type Deps struct {
	Log       *slog.Logger
	Ingestor  *ingest.Ingestor
	Store     *store.MemoryStore
	Engine    *engine.Engine
	Telemetry *utils.Telemetry
	Settings  engine.Settings
	// Now defaults to time.Now.
	Now func() time.Time
}

type api struct{ Deps }

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	a := &api{d}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(utils.Instrument(d.Telemetry))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if snap, _ := d.Store.Current(); snap == nil {
			http.Error(w, errNoSnapshot.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", d.Telemetry.Handler())

	mux.Post("/ingest/run", a.ingestRun)
	mux.Post("/ingest/snapshot", a.ingestSnapshot)

	mux.Get("/analysis", a.analysis)
	mux.Get("/analysis/{section}", a.analysis)

	mux.Get("/export/{table}.csv", a.exportCSV)
	mux.Post("/export/run", a.exportRun)

	return mux
}

// Preload runs one ingest outside any request and counts it the same way
// POST /ingest/run does.
func Preload(ctx context.Context, d Deps) error {
	_, fresh, err := d.Ingestor.Run(ctx)
	if err != nil {
		return err
	}
	if fresh {
		d.Telemetry.SnapshotLoaded()
	}
	return nil
}

func (a *api) ingestRun(w http.ResponseWriter, r *http.Request) {
	snap, fresh, err := a.Ingestor.Run(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ingest.ErrSnapshotNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	a.loaded(w, snap.ID, fresh)
}

func (a *api) ingestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, fresh, err := a.Ingestor.Load(http.MaxBytesReader(w, r.Body, 64<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.loaded(w, snap.ID, fresh)
}

func (a *api) loaded(w http.ResponseWriter, id string, fresh bool) {
	if fresh {
		a.Telemetry.SnapshotLoaded()
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]any{"snapshot_id": id, "fresh": fresh})
}

// result runs (or fetches from cache) the analysis the query describes.
func (a *api) result(r *http.Request) (*engine.Result, error) {
	q := r.URL.Query()
	f, err := window.ParseFilter(q.Get("filter_type"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		return nil, badRequest(err)
	}
	months := 0
	if v := q.Get("months"); v != "" {
		if months, err = strconv.Atoi(v); err != nil || months <= 0 {
			return nil, badRequest(fmt.Errorf("months must be a positive integer"))
		}
	}

	snap, version := a.Store.Current()
	if snap == nil {
		return nil, errNoSnapshot
	}
	key := fmt.Sprintf("%d|%s|%s|%s|%d", version, q.Get("filter_type"), q.Get("start_date"), q.Get("end_date"), months)
	if res, ok := a.Store.Result(key); ok {
		a.Telemetry.CacheLookup(true)
		return res, nil
	}
	a.Telemetry.CacheLookup(false)

	res, err := a.Engine.Analyze(r.Context(), snap, engine.Params{
		Filter:         f,
		Now:            a.Now(),
		CampaignMonths: months,
		Settings:       a.Settings,
	})
	a.Telemetry.Analysis(err == nil)
	if err != nil {
		return nil, err
	}
	a.Store.SaveResult(version, key, res)
	return res, nil
}

func (a *api) analysis(w http.ResponseWriter, r *http.Request) {
	res, err := a.result(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	res = truncate(res, limit)

	section := chi.URLParam(r, "section")
	if section == "" {
		writeJSON(w, res)
		return
	}
	v, ok := sectionOf(res, section)
	if !ok {
		http.Error(w, "unknown section "+strconv.Quote(section), http.StatusNotFound)
		return
	}
	writeJSON(w, v)
}

func (a *api) exportCSV(w http.ResponseWriter, r *http.Request) {
	res, err := a.result(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	tbl, err := res.Sources().Table(chi.URLParam(r, "table"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tbl.Name+".csv"))
	if err := report.WriteCSV(w, tbl); err != nil {
		a.Log.Error("csv export", slog.String("table", tbl.Name), slog.String("err", err.Error()))
	}
}

func (a *api) exportRun(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("table")
	if name == "" {
		http.Error(w, "table required", http.StatusBadRequest)
		return
	}
	res, err := a.result(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	tbl, err := res.Sources().Table(name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.Ingestor.ExportTable(r.Context(), res.SnapshotID, tbl)
	if errors.Is(err, ingest.ErrSinkNotConfigured) {
		a.fail(w, r, err)
		return
	}
	if err != nil {
		a.Log.Error("sink export", slog.String("table", tbl.Name), slog.String("err", err.Error()))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	a.Telemetry.RowsExported(tbl.Name, n)
	writeJSON(w, map[string]any{"table": tbl.Name, "exported": n})
}

type badRequestError struct{ error }

func (e badRequestError) Unwrap() error { return e.error }

func badRequest(err error) error { return badRequestError{err} }

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ir *window.InvalidRangeError
		se *report.ShapeError
		br badRequestError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ir), errors.Is(err, window.ErrUnknownFilter), errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.As(err, &se):
		status = http.StatusConflict
	case errors.Is(err, errNoSnapshot), errors.Is(err, ingest.ErrSinkNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, report.ErrUnknownTable):
		status = http.StatusNotFound
	}
	if status >= 500 {
		a.Log.Error("request failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
