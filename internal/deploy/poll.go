package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/useVaf/vaf-cli/pkg/api/client"
)

// Release status values reported by the backend.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

const (
	pollInterval    = 5 * time.Second
	maxPollAttempts = 60
)

type releaseReader interface {
	GetRelease(ctx context.Context, projectID, envID, releaseID string) (client.Release, error)
}

var errStillRunning = errors.New("release still in progress")

// StatusPoller queries release status until a terminal state or the attempt
// budget runs out.
type StatusPoller struct {
	api      releaseReader
	logger   *slog.Logger
	out      io.Writer
	interval time.Duration
	attempts uint64
}

// NewStatusPoller returns a poller with the production interval and budget;
// log tails are written to out.
func NewStatusPoller(api releaseReader, logger *slog.Logger, out io.Writer) *StatusPoller {
	return &StatusPoller{
		api:      api,
		logger:   logger,
		out:      out,
		interval: pollInterval,
		attempts: maxPollAttempts,
	}
}

// Poll fetches the release on a fixed interval, surfacing any newly available
// log tail on each fetch. It returns the last observed record. Exhausting the
// attempt budget is a warning, not an error: the release may still succeed
// server-side. A transport error stops polling and is returned as an error —
// it is never conflated with a failed release.
func (p *StatusPoller) Poll(ctx context.Context, projectID, envID, releaseID string) (client.Release, error) {
	var last client.Release
	var logOffset int

	backoff := retry.WithMaxRetries(p.attempts-1, retry.NewConstant(p.interval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		record, err := p.api.GetRelease(ctx, projectID, envID, releaseID)
		if err != nil {
			return err
		}
		last = record
		if len(record.Logs) > logOffset {
			fmt.Fprint(p.out, record.Logs[logOffset:])
			logOffset = len(record.Logs)
		}
		switch record.Status {
		case StatusSuccess, StatusFailed:
			return nil
		default:
			return retry.RetryableError(errStillRunning)
		}
	})
	if err != nil {
		if errors.Is(err, errStillRunning) {
			p.logger.Warn("gave up waiting for the release to finish; it may still complete server-side",
				"release_id", releaseID, "last_status", last.Status)
			return last, nil
		}
		return last, fmt.Errorf("query release status: %w", err)
	}
	return last, nil
}
