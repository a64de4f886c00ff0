package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/pardot-insights/internal/config"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/store"
	"github.com/AngelCh415/pardot-insights/internal/utils"
)

var ErrSnapshotNotConfigured = errors.New("snapshot url not configured")

type Ingestor struct {
	c       HTTPClient
	st      *store.MemoryStore
	log     *slog.Logger
	cfg     config.Config
	backoff utils.Backoff
	now     func() time.Time
}

func NewIngestor(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config) *Ingestor {
	return &Ingestor{c: c, st: st, log: log, cfg: cfg, backoff: defaultBackoff, now: time.Now}
}

// Run fetches the snapshot from the configured upstream and loads it.
func (in *Ingestor) Run(ctx context.Context) (*models.Snapshot, bool, error) {
	if in.cfg.SnapshotURL == "" {
		return nil, false, ErrSnapshotNotConfigured
	}
	var w snapshotWire
	if err := GetJSONWithRetry(ctx, in.c, in.cfg.SnapshotURL, &w, in.backoff); err != nil {
		return nil, false, fmt.Errorf("fetch snapshot: %w", err)
	}
	snap, fresh := in.load(w)
	return snap, fresh, nil
}

// Load decodes a snapshot pushed by a caller.
func (in *Ingestor) Load(r io.Reader) (*models.Snapshot, bool, error) {
	var w snapshotWire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	snap, fresh := in.load(w)
	return snap, fresh, nil
}

func (in *Ingestor) load(w snapshotWire) (*models.Snapshot, bool) {
	snap := normalize(w, in.now())
	version, fresh := in.st.Put(snap)
	in.log.Info("snapshot loaded",
		slog.String("snapshot", snap.ID),
		slog.Uint64("version", version),
		slog.Bool("fresh", fresh),
		slog.Int("emails", len(snap.EmailSends)),
		slog.Int("forms", len(snap.Forms)),
		slog.Int("landing_pages", len(snap.LandingPages)),
		slog.Int("prospects", len(snap.Prospects)),
		slog.Int("campaigns", len(snap.Campaigns)),
		slog.Int("programs", len(snap.Programs)))
	return snap, fresh
}

// normalize converts the wire snapshot into entity records. A snapshot
// without an id gets a random one, so it always counts as new.
func normalize(w snapshotWire, fetchedAt time.Time) *models.Snapshot {
	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &models.Snapshot{
		ID:           id,
		FetchedAt:    fetchedAt,
		EmailSends:   mapSlice(w.EmailSends, emailWire.model),
		Forms:        mapSlice(w.Forms, formWire.model),
		LandingPages: mapSlice(w.LandingPages, landingWire.model),
		Prospects:    mapSlice(w.Prospects, prospectWire.model),
		Campaigns:    mapSlice(w.Campaigns, campaignWire.model),
		Programs:     mapSlice(w.Programs, programWire.model),
	}
}
