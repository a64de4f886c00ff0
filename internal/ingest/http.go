package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/utils"
)

var defaultBackoff = utils.NewBackoff(100*time.Millisecond, 2)

// GetJSONWithRetry decodes url into dst, retrying transport errors and
// temporary upstream statuses with exponential backoff.
func GetJSONWithRetry(ctx context.Context, c HTTPClient, url string, dst any, b utils.Backoff) error {
	var permanent error
	err := b.Do(ctx, func(int) error {
		err := getJSON(ctx, c, url, dst)
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		return permanent
	}
	return err
}
