package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AngelCh415/pardot-insights/internal/report"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

type exportPayload struct {
	SnapshotID string       `json:"snapshot_id"`
	Table      string       `json:"table"`
	Columns    []string     `json:"columns"`
	Rows       []report.Row `json:"rows"`
}

// Sign is the hex HMAC-SHA256 of body under secret, sent as X-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ExportTable posts a shaped table to the sink and returns the row count.
// Empty tables are not sent.
func (in *Ingestor) ExportTable(ctx context.Context, snapshotID string, t *report.Table) (int, error) {
	if in.cfg.SinkURL == "" || in.cfg.SinkSecret == "" {
		return 0, ErrSinkNotConfigured
	}
	if t == nil {
		return 0, &report.ShapeError{Table: "export"}
	}
	if len(t.Rows) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(exportPayload{SnapshotID: snapshotID, Table: t.Name, Columns: t.Columns, Rows: t.Rows})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, in.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(in.cfg.SinkSecret, b))
	resp, err := in.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return len(t.Rows), nil
}
