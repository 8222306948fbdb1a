package orchestrator

import (
	"context"

	"svcwiki/internal/catalog"
	"svcwiki/internal/confluence"
	"svcwiki/internal/report"
)

// ServiceSource lists the catalog's services.
type ServiceSource interface {
	ListServices(ctx context.Context) ([]*catalog.Service, error)
	// Requests returns the number of HTTP requests issued so far.
	Requests() int
}

// ReportBuilder turns a service into a report outcome.
type ReportBuilder interface {
	Build(ctx context.Context, svc *catalog.Service) (report.Outcome, error)
}

// Wiki is the page store the reports are published to.
type Wiki interface {
	GetPageID(ctx context.Context, space, title string) (string, error)
	Publish(ctx context.Context, content, space, title, parentID string) (*confluence.PublishResult, error)
}

// ConfirmFunc asks whether a page may be overwritten.
type ConfirmFunc func(prompt string) (bool, error)
