package loadcheck

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/roster/internal/adapters/mq/worker"
	"github.com/okian/roster/internal/adapters/remote"
	"github.com/okian/roster/internal/domain/delivery"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/types"
	"github.com/okian/roster/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run submits the generated records concurrently, then reads the sheet
// back and verifies it. A nil error means the report is OK.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadcheck")

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/submissions"
	client := remote.New(endpoint, remote.WithTimeout(cfg.Timeout), remote.WithUserAgent("roster-loadcheck"))

	ids := generateIDs(cfg.Unique)
	records := buildRecords(ids, cfg.Repeats, model.FormatTimestamp(time.Now()))
	log.Info(ctx, "submitting",
		logger.String("endpoint", endpoint),
		logger.Int("unique", cfg.Unique),
		logger.Int("submissions", len(records)),
		logger.Int("workers", cfg.Workers),
	)

	start := time.Now()
	var accepted, duplicate, rejected, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, rec := range records {
		g.Go(func() error {
			res, err := client.Append(gctx, rec)
			switch worker.Classify(res, err).Status {
			case delivery.StatusAccepted:
				accepted.Add(1)
			case delivery.StatusDuplicate:
				duplicate.Add(1)
			case delivery.StatusRejected:
				rejected.Add(1)
			default:
				failed.Add(1)
				log.Debug(gctx, "submission failed", logger.String("id", rec.ID), logger.Any("result", res), logger.Error(err))
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	rows, err := client.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back: %w", err)
	}

	report := verify(ids, rows)
	report.Submitted = len(records)
	report.Accepted = int(accepted.Load())
	report.Duplicate = int(duplicate.Load())
	report.Rejected = int(rejected.Load())
	report.Failed = int(failed.Load())
	report.Duration = time.Since(start)

	log.Info(ctx, "load check finished",
		logger.Int("accepted", report.Accepted),
		logger.Int("duplicate", report.Duplicate),
		logger.Int("failed", report.Failed),
		logger.Int("missing", len(report.Missing)),
		logger.Int("repeated", len(report.Repeated)),
		logger.Duration("duration", report.Duration),
	)

	if !report.OK() {
		return report, fmt.Errorf("%w: accepted %d of %d, %d missing, %d repeated",
			ErrVerification, report.Accepted, report.Unique, len(report.Missing), len(report.Repeated))
	}
	return report, nil
}

// verify counts the rows of each generated id. Rows written by anything
// else are ignored.
func verify(ids []string, rows types.RowsResponse) *Report {
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}
	for _, r := range rows.Rows {
		if _, ok := counts[r.ID]; ok {
			counts[r.ID]++
		}
	}

	report := &Report{Unique: len(ids), Rows: rows.Count}
	for _, id := range ids {
		switch n := counts[id]; {
		case n == 0:
			report.Missing = append(report.Missing, id)
		case n > 1:
			report.Repeated = append(report.Repeated, id)
		}
	}
	return report
}
