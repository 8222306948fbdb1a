// Package orchestrator runs the catalog-to-wiki batch job.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"svcwiki/internal/confluence"
	"svcwiki/internal/db"
	apperrors "svcwiki/internal/errors"
	"svcwiki/internal/metrics"
	"svcwiki/internal/notify"
	"svcwiki/internal/report"
)

// ErrIndexDeclined is returned when the operator refuses to overwrite the index.
var ErrIndexDeclined = errors.New("index publish declined")

// Runner publishes one wiki page per included service and then the index.
type Runner struct {
	Catalog  ServiceSource
	Reports  ReportBuilder
	Wiki     Wiki
	Store    db.Store
	Metrics  *metrics.Metrics
	Notifier notify.Notifier
	Logger   *slog.Logger
	Options  Options

	now func() time.Time
}

func (r *Runner) init() {
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.Store == nil {
		r.Store = db.NoopStore{}
	}
	if r.Metrics == nil {
		r.Metrics = metrics.NewMetrics()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.Options.PageTitle == nil {
		r.Options.PageTitle = func(_, name string) string { return name }
	}
}

// Run executes the batch. There is no rollback: the first fatal error stops
// the run and is returned together with the summary of the work done so far.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	r.init()
	start := r.now()
	summary := newSummary(r.Options.RunID)

	r.Logger.Info("Starting wiki sync", "space", r.Options.Space, "dry_run", r.Options.DryRun, "index_only", r.Options.IndexOnly)
	r.notify(ctx, notify.EventStart, fmt.Sprintf("svcwiki run %s started", r.Options.RunID))

	err := r.run(ctx, summary)

	end := r.now()
	summary.Duration = end.Sub(start)
	r.Metrics.ObserveRun(start, end)
	r.Metrics.CatalogRequests.Add(float64(r.Catalog.Requests()))

	if err != nil {
		r.Metrics.RunFailures.WithLabelValues(apperrors.Kind(err)).Inc()
		r.Logger.Error("Wiki sync failed", "error", err, "kind", apperrors.Kind(err))
		r.notify(ctx, notify.EventFailure, fmt.Sprintf("svcwiki run %s failed: %v", r.Options.RunID, err))
		return summary, err
	}

	r.Logger.Info("Wiki sync finished", "services", summary.Services, "included", summary.Included, "excluded", len(summary.Excluded), "duration", summary.Duration)
	r.notify(ctx, notify.EventSuccess, summary.String())
	return summary, nil
}

func (r *Runner) run(ctx context.Context, summary *Summary) error {
	var parentID string
	if !r.Options.DryRun {
		id, err := r.Wiki.GetPageID(ctx, r.Options.Space, r.Options.ParentTitle)
		if err != nil {
			return fmt.Errorf("failed to resolve parent page %q: %w", r.Options.ParentTitle, err)
		}
		parentID = id
	}

	services, err := r.Catalog.ListServices(ctx)
	if err != nil {
		return err
	}
	r.Logger.Info("Listed catalog services", "count", len(services))

	var entries []report.IndexEntry
	for _, svc := range services {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Services++

		outcome, err := r.Reports.Build(ctx, svc)
		if err != nil {
			if apperrors.IsFatal(err) {
				return fmt.Errorf("failed to build report for %s: %w", svc.URL(), err)
			}
			// An incomplete catalog entry costs only its own page.
			r.Metrics.ServicesTotal.WithLabelValues("failed").Inc()
			summary.Failed = append(summary.Failed, svc.Name())
			r.Logger.Warn("Skipped service with incomplete catalog entry", "service", svc.Name(), "url", svc.URL(), "error", err)
			continue
		}

		switch o := outcome.(type) {
		case *report.Excluded:
			r.Metrics.ServicesTotal.WithLabelValues("excluded").Inc()
			summary.Excluded = append(summary.Excluded, o.ServiceName)
			r.Logger.Info("Excluded service", "service", o.ServiceName, "reason", o.Reason)

		case *report.Included:
			r.Metrics.ServicesTotal.WithLabelValues("included").Inc()
			summary.Included++
			summary.Levels[o.Level]++

			title := r.Options.PageTitle(o.ServiceID, o.ServiceName)
			entries = append(entries, report.IndexEntry{Name: o.ServiceName, Title: title})

			level := o.Level
			page := PageResult{Title: title, Service: o.ServiceName, Level: &level, Action: confluence.ActionSkipped}
			if r.publishServices() {
				if page, err = r.publish(ctx, page, o.HTML, parentID); err != nil {
					return err
				}
			}
			summary.addPage(page)
			r.Logger.Info("Processed service", "service", o.ServiceName, "title", title, "level", o.Level, "action", page.Action)
		}
	}

	entries = append(entries, r.Options.ExtraPages...)
	return r.publishIndex(ctx, summary, entries)
}

func (r *Runner) publishServices() bool {
	return r.Options.UpdateServicePages && !r.Options.IndexOnly && !r.Options.DryRun
}

func (r *Runner) publishIndex(ctx context.Context, summary *Summary, entries []report.IndexEntry) error {
	html, err := report.BuildIndex(entries, r.Options.Index)
	if err != nil {
		return err
	}

	page := PageResult{Title: r.Options.ParentTitle, Action: confluence.ActionSkipped}
	if r.Options.DryRun {
		summary.addPage(page)
		return nil
	}

	if r.Options.ConfirmIndex != nil {
		ok, err := r.Options.ConfirmIndex(fmt.Sprintf("Overwrite index page %q with %d entries?", r.Options.ParentTitle, len(entries)))
		if err != nil {
			return err
		}
		if !ok {
			summary.addPage(page)
			return ErrIndexDeclined
		}
	}

	indexParentID, err := r.Wiki.GetPageID(ctx, r.Options.Space, r.Options.IndexParentTitle)
	if err != nil {
		return fmt.Errorf("failed to resolve index parent page %q: %w", r.Options.IndexParentTitle, err)
	}

	page, err = r.publish(ctx, page, html, indexParentID)
	if err != nil {
		return err
	}
	summary.addPage(page)
	r.Logger.Info("Published index", "title", page.Title, "entries", len(entries), "action", page.Action)
	return nil
}

// publish hands content to the wiki and records the outcome in the ledger.
// The wiki decides whether the page changed; the ledger is history only.
func (r *Runner) publish(ctx context.Context, page PageResult, content, parentID string) (PageResult, error) {
	digest := db.Digest(content)
	last, err := r.Store.LastDigest(r.Options.Space, page.Title)
	if err != nil {
		r.Logger.Warn("Failed to read publish ledger", "title", page.Title, "error", err)
	}

	res, err := r.Wiki.Publish(ctx, content, r.Options.Space, page.Title, parentID)
	if err != nil {
		return page, err
	}
	page.Action = res.Action
	page.PageID = res.Page.ID
	r.Metrics.PagesPublished.WithLabelValues(string(page.Action)).Inc()

	if last != "" && page.Action == confluence.ActionCreated {
		r.Logger.Warn("Recreated wiki page deleted since the last publish", "title", page.Title, "page_id", page.PageID)
	}

	err = r.Store.RecordPublish(db.Publish{
		RunID:       r.Options.RunID,
		Space:       r.Options.Space,
		Title:       page.Title,
		PageID:      page.PageID,
		Digest:      digest,
		Action:      string(page.Action),
		PublishedAt: r.now().UTC(),
	})
	if err != nil {
		r.Logger.Warn("Failed to record publish", "title", page.Title, "error", err)
	}
	return page, nil
}

func (r *Runner) notify(ctx context.Context, event, message string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.Notify(ctx, event, message); err != nil {
		r.Logger.Warn("Failed to send notification", "event", event, "error", err)
	}
}
