// Package report scores catalog services against the documentation rubric and
// renders their wiki pages.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"svcwiki/internal/catalog"
	apperrors "svcwiki/internal/errors"
	"svcwiki/internal/linkcheck"
	"svcwiki/internal/stringutils"
)

// LinkChecker checks a documentation link.
type LinkChecker interface {
	Check(ctx context.Context, url string) linkcheck.Result
}

// Options configures a Builder.
type Options struct {
	Rubric Rubric
	// RequiredCategory, when set, excludes services that are not in it.
	RequiredCategory     string
	HideRequiredCategory bool
	// CatalogName is shown in the page header.
	CatalogName string
}

// Builder builds service reports.
type Builder struct {
	links LinkChecker
	opts  Options
}

// NewBuilder creates a Builder. A nil rubric uses DefaultRubric.
func NewBuilder(links LinkChecker, opts Options) *Builder {
	if opts.Rubric == nil {
		opts.Rubric = DefaultRubric()
	}
	if opts.CatalogName == "" {
		opts.CatalogName = "the service catalogue"
	}
	return &Builder{links: links, opts: opts}
}

// Build walks svc and returns an *Included report, or *Excluded when the
// service lacks the required category. Errors are fatal to the run.
func (b *Builder) Build(ctx context.Context, svc *catalog.Service) (Outcome, error) {
	summary, err := svc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := summary.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories of %s: %w", svc.URL(), err)
	}
	categories, included := b.filterCategories(categories)
	if !included {
		slog.Info("Excluding service", "service", svc.Name(), "required_category", b.opts.RequiredCategory)
		return &Excluded{
			ServiceID:   svc.ID(),
			ServiceName: svc.Name(),
			Reason:      fmt.Sprintf("not in category %q", b.opts.RequiredCategory),
		}, nil
	}

	w := &writer{ctx: ctx, b: b}
	if err := w.header(svc); err != nil {
		return nil, err
	}
	w.descriptions(svc, summary)
	w.categories(categories)
	w.documentation(summary)
	w.list("License", summary.Licenses(), CheckMissingLicense, "Add license details")
	w.list("Contact", summary.Contacts(), CheckMissingContact, "Add contact")
	w.list("Publications", summary.Publications(), "", "")
	w.list("Citations", summary.Citations(), "", "")

	variants, err := svc.Variants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get variants of %s: %w", svc.URL(), err)
	}
	deployments, err := svc.Deployments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get deployments of %s: %w", svc.URL(), err)
	}
	w.deploymentTable(variants, deployments)
	for _, v := range variants {
		if err := w.variant(v); err != nil {
			return nil, fmt.Errorf("failed to report variant %s: %w", v.URL, err)
		}
	}

	return &Included{
		ServiceID:   svc.ID(),
		ServiceName: svc.Name(),
		ServiceURL:  svc.URL(),
		HTML:        evaluation(w.actions) + w.body.String(),
		Actions:     w.actions,
		Level:       w.actions.Level(),
	}, nil
}

func (b *Builder) filterCategories(names []string) ([]string, bool) {
	required := b.opts.RequiredCategory
	if required == "" {
		return names, true
	}
	found := false
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == required {
			found = true
			if b.opts.HideRequiredCategory {
				continue
			}
		}
		out = append(out, name)
	}
	return out, found
}

// writer accumulates one report.
type writer struct {
	ctx     context.Context
	b       *Builder
	body    strings.Builder
	actions Actions
}

func (w *writer) fail(check Check, item string) {
	w.actions.add(w.b.opts.Rubric.Severity(check), item)
}

func (w *writer) printf(format string, args ...any) {
	fmt.Fprintf(&w.body, format, args...)
}

func (w *writer) header(svc *catalog.Service) error {
	w.printf("<h2>Service name</h2>\n<p>%s</p>\n", stringutils.Link(svc.URL(), svc.Name()))
	if created := svc.CreatedAt(); created != "" {
		w.printf("<h2>Created in %s</h2>\n<p>%s</p>\n", stringutils.Text(w.b.opts.CatalogName), stringutils.Text(created))
	}

	sub, err := svc.Submitter(w.ctx)
	switch {
	case apperrors.IsMissingField(err):
	case err != nil:
		return fmt.Errorf("failed to get submitter of %s: %w", svc.URL(), err)
	case sub.Name != "":
		w.printf("<p><small>Submitted by %s</small></p>\n", stringutils.Text(sub.Display()))
	}
	return nil
}

func (w *writer) descriptions(svc *catalog.Service, summary *catalog.Summary) {
	var descriptions []string
	if d := svc.Description(); d != "" {
		descriptions = append(descriptions, d)
	}
	descriptions = append(descriptions, summary.Descriptions()...)
	if len(descriptions) > 1 && descriptions[0] == descriptions[1] {
		descriptions = descriptions[1:]
	}

	if len(descriptions) == 0 {
		w.fail(CheckMissingDescription, "Add service description")
		return
	}
	if len(descriptions) == 1 && strings.TrimSpace(descriptions[0]) == svc.Name() {
		w.fail(CheckWeakDescription, "Improve service description")
	}
	w.printf("<h2>Description</h2>\n")
	for _, d := range descriptions {
		w.body.WriteString(panel(descriptionPanel, renderMarkdown(d)))
	}
}

func (w *writer) categories(names []string) {
	if len(names) == 0 {
		w.fail(CheckMissingCategory, "Add service to a category")
		return
	}
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = stringutils.Text(n)
	}
	w.printf("<h2>Categories</h2>\n<p>%s</p>\n", strings.Join(escaped, ", "))
}

func (w *writer) documentation(summary *catalog.Summary) {
	urls := summary.DocumentationURLs()
	if len(urls) == 0 {
		w.fail(CheckMissingDocumentation, "Add documentation link")
		return
	}
	w.printf("<h2>Documentation</h2>\n")
	for _, u := range urls {
		w.printf("<p>%s</p>\n", w.link(u))
	}
}

// link checks u and renders it. Link problems never affect the level.
func (w *writer) link(u string) string {
	res := w.b.links.Check(w.ctx, u)
	if action := res.Action(); action != "" {
		w.actions.Other = append(w.actions.Other, action)
	}
	return res.Render()
}

// list renders a titled section. An empty list fires check, when one is given.
func (w *writer) list(title string, items []string, check Check, action string) {
	if len(items) == 0 {
		if check != "" {
			w.fail(check, action)
		}
		return
	}
	w.printf("<h2>%s</h2>\n", stringutils.Text(title))
	for _, item := range items {
		w.printf("<p>%s</p>\n", stringutils.Text(item))
	}
}

type variantRow struct {
	label       string
	deployments []string
}

func (w *writer) deploymentTable(variants []*catalog.Variant, deployments []*catalog.Deployment) {
	var rows []*variantRow
	byURL := make(map[string]*variantRow)
	for _, v := range variants {
		row := &variantRow{label: stringutils.Link(v.URL, v.Label())}
		rows = append(rows, row)
		byURL[v.URL] = row
	}
	for _, d := range deployments {
		row, ok := byURL[d.VariantURL]
		if !ok {
			row = &variantRow{
				label: stringutils.Link(d.VariantURL, d.VariantDescription) + " " + stringutils.Alert("(Unknown variant)"),
			}
			rows = append(rows, row)
			byURL[d.VariantURL] = row
		}
		row.deployments = append(row.deployments, fmt.Sprintf("<code>%s</code><br />(%s - %s)",
			stringutils.OrAlert(d.Endpoint, "No endpoint"),
			stringutils.OrAlert(d.ProviderName, "No provider name"),
			stringutils.OrAlert(d.ProviderDescription, "No provider description")))
	}
	if len(rows) == 0 {
		return
	}

	w.printf("<h2>Variants</h2>\n<table><tbody><tr><th>Variant</th><th>Deployment</th></tr>\n")
	for _, row := range rows {
		cells := row.deployments
		if len(cells) == 0 {
			cells = []string{stringutils.Alert("No deployments for this variant")}
		}
		attr := ""
		if len(cells) > 1 {
			attr = fmt.Sprintf(` rowspan="%d"`, len(cells))
		}
		w.printf("<tr><td%s>%s</td><td>%s</td></tr>\n", attr, row.label, cells[0])
		for _, cell := range cells[1:] {
			w.printf("<tr><td>%s</td></tr>\n", cell)
		}
	}
	w.printf("</tbody></table>\n")
}

func (w *writer) variant(v *catalog.Variant) error {
	label := v.Label()
	w.printf("<h2>%s</h2>\n", stringutils.Text(label))

	switch iface := v.Interface.(type) {
	case *catalog.SoapInterface:
		return w.soap(label, iface)
	case *catalog.RestInterface:
		return w.rest(label, iface)
	default:
		w.printf("<p>%s</p>\n", stringutils.Alert("Unrecognised interface description"))
		w.fail(CheckUnknownInterface, fmt.Sprintf("Fix interface description of variant %s", label))
		return nil
	}
}

func (w *writer) interfaceDocumentation(u string) {
	if u == "" {
		w.printf("<p>Interface documentation: %s</p>\n", stringutils.Alert("No documentation"))
		return
	}
	w.printf("<p>Interface documentation: %s</p>\n", w.link(u))
}

func (w *writer) soap(label string, iface *catalog.SoapInterface) error {
	if wsdl := iface.WSDLLocation(); wsdl == "" {
		w.printf("<p>%s</p>\n", stringutils.Alert("No WSDL document"))
		w.fail(CheckMissingWSDL, "Add link to WSDL document")
	} else {
		w.printf("<p>WSDL: %s</p>\n", stringutils.CodeLink(wsdl))
	}
	w.interfaceDocumentation(iface.DocumentationURL())

	ops, err := iface.Operations(w.ctx)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		w.fail(CheckMissingOperations, fmt.Sprintf("Add description of available operations for variant %s", label))
	}
	for _, op := range ops {
		w.printf("<h3>%s</h3>\n", stringutils.Text(op.Name))
		annotated, err := op.AnnotatedDescriptions(w.ctx)
		if err != nil {
			return err
		}
		var descriptions []string
		if op.Description != "" {
			descriptions = append(descriptions, op.Description)
		}
		descriptions = append(descriptions, annotated...)
		if len(descriptions) == 0 {
			w.printf("<p>%s</p>\n", stringutils.Alert("No description"))
		}
		for _, d := range descriptions {
			w.printf("<p>%s</p>\n", stringutils.Text(d))
		}
		if err := w.parameters(op, "Inputs", "input", op.Inputs); err != nil {
			return err
		}
		if err := w.parameters(op, "Outputs", "output", op.Outputs); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) rest(label string, iface *catalog.RestInterface) error {
	w.interfaceDocumentation(iface.DocumentationURL())

	resources, err := iface.Resources(w.ctx)
	if err != nil {
		return err
	}
	if resources == 0 {
		w.fail(CheckMissingOperations, fmt.Sprintf("Add description of available operations for variant %s", label))
	}

	ops, err := iface.Operations(w.ctx)
	if err != nil {
		return err
	}
	for _, op := range ops {
		w.printf("<h3>%s</h3>\n", stringutils.Text(op.Name))
		if op.Description == "" {
			w.printf("<p>%s</p>\n", stringutils.Alert("No description"))
			w.fail(CheckMissingOperationDescription, fmt.Sprintf("Add description to operation %q", op.Name))
		} else {
			w.printf("<p>%s</p>\n", stringutils.Text(op.Description))
		}
		if err := w.parameters(op, "Inputs", "input", op.Inputs); err != nil {
			return err
		}
		if err := w.parameters(op, "Outputs", "output", op.Outputs); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) parameters(op *catalog.Operation, heading, kind string, params []*catalog.Parameter) error {
	if len(params) == 0 {
		return nil
	}
	w.printf("<h4>%s</h4>\n", heading)
	for _, p := range params {
		w.printf("<p><b>%s</b> - %s</p>\n", stringutils.Text(p.Name), stringutils.OrAlert(p.Description, "No description"))
		if p.Description == "" {
			w.fail(CheckMissingParameterDescription, fmt.Sprintf("Add description to operation %q %s %q", op.Name, kind, p.Name))
		}
		examples, err := p.Examples(w.ctx)
		if err != nil && !apperrors.IsMissingField(err) {
			return err
		}
		for _, ex := range examples {
			w.printf("<p>Example:<br /><code>%s</code></p>\n", stringutils.Text(ex))
		}
	}
	return nil
}

// evaluation renders the maturity verdict placed at the top of the page.
func evaluation(a Actions) string {
	var b strings.Builder
	items := func(list []string) {
		for _, item := range list {
			fmt.Fprintf(&b, "<p>- %s</p>\n", stringutils.Text(item))
		}
	}

	level := a.Level()
	switch level {
	case LevelBlocked:
		b.WriteString("<p>To allow further evaluation, please solve these problems:</p>\n")
		items(a.Buckets[0])
	case LevelCompliant:
		fmt.Fprintf(&b, "<p><b>Provisional maturity level: %d</b> (subject to manual review)</p>\n", level)
	default:
		note := ""
		if level > 0 {
			note = " (subject to manual review)"
		}
		next := a.Next()
		fmt.Fprintf(&b, "<p><b>Provisional maturity level: %d</b>%s</p>\n", level, note)
		fmt.Fprintf(&b, "<p>To obtain level %d, this service requires the following %d actions:</p>\n", level+1, len(next))
		items(next)
	}

	if len(a.Other) > 0 {
		b.WriteString("<p>Other issues, not affecting maturity level:</p>\n")
		items(a.Other)
	}
	return b.String()
}
