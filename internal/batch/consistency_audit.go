package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"library-lending/internal/domain/lending"
	"library-lending/internal/infrastructure/monitoring"
)

// ConsistencyAuditJob reconciles the availability flags against the open-loan
// rows and exports the result as gauges. It never repairs anything itself;
// a mismatch means someone bypassed the ledger and needs a human to look.
type ConsistencyAuditJob struct {
	store  lending.Store
	logger *slog.Logger
}

func NewConsistencyAuditJob(store lending.Store, logger *slog.Logger) *ConsistencyAuditJob {
	if store == nil || logger == nil {
		panic("ConsistencyAuditJob dependencies cannot be nil")
	}
	return &ConsistencyAuditJob{
		store:  store,
		logger: logger.With("job", "ConsistencyAudit"),
	}
}

func (j *ConsistencyAuditJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting availability consistency audit job.")

	openLoans, err := j.store.CountOpenLoans(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count open loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run audit, failed to count open loans: %w", err)
	}

	mismatches, err := j.store.FindAvailabilityMismatches(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to find availability mismatches, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run audit, failed to find mismatches: %w", err)
	}

	monitoring.RecordAudit(openLoans, int64(len(mismatches)))

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("open_loans", openLoans),
		slog.Int("mismatched_books", len(mismatches)),
	)
	if len(mismatches) > 0 {
		for _, bookID := range mismatches {
			j.logger.WarnContext(ctx, "Book availability flag disagrees with open-loan state.", slog.String("bookID", bookID.String()))
		}
		summaryLog.WarnContext(ctx, "Availability consistency audit finished with mismatches.")
		return fmt.Errorf("audit found %d books with inconsistent availability", len(mismatches))
	}

	summaryLog.InfoContext(ctx, "Availability consistency audit finished successfully.")
	return nil
}
