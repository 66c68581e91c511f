package populate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/catalog"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/internal/pricing"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/pkg/enums"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

const (
	ScriptVersion  = "1.0.0"
	SummaryPath    = "population_summary"
	day            = 24 * time.Hour
	projectSuffix  = ". Incluye capacitación y puesta en marcha."
	defaultCountry = "México"
)

var (
	equipmentStatuses = []enums.QuoteStatus{
		enums.QuoteStatusClosedWon,
		enums.QuoteStatusSent,
		enums.QuoteStatusAccepted,
		enums.QuoteStatusPending,
	}
	paymentTerms = []string{"NET15", "NET30", "NET45"}

	nonAlnum    = regexp.MustCompile(`[^a-z0-9]+`)
	accentFold  = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n")
	taxAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type Params struct {
	Seed    *Seed
	Builder *quotes.Builder
	Sync    *batch.Synchronizer
	Logger  *logger.Logger
	// LargeOrderThreshold is the total a won quote must exceed to spawn a project.
	LargeOrderThreshold decimal.Decimal
	Currency            string
	// Rand defaults to an unseeded source.
	Rand *rand.Rand
	Now  func() time.Time
}

type Populator struct {
	seed      *Seed
	catalog   map[string]models.Product
	equipment []models.Product
	spares    []models.Product
	builder   *quotes.Builder
	sync      *batch.Synchronizer
	logg      *logger.Logger
	threshold decimal.Decimal
	currency  string
	rnd       *rand.Rand
	statuses  *quotes.SyntheticStatusPicker
	now       func() time.Time
}

func New(params Params) (*Populator, error) {
	if params.Seed == nil || params.Builder == nil || params.Sync == nil {
		return nil, fmt.Errorf("seed, builder and synchronizer required")
	}
	rnd := params.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	currency := params.Currency
	if currency == "" {
		currency = "MXN"
	}
	p := &Populator{
		seed:      params.Seed,
		catalog:   params.Seed.Catalog(),
		builder:   params.Builder,
		sync:      params.Sync,
		logg:      logg,
		threshold: params.LargeOrderThreshold,
		currency:  currency,
		rnd:       rnd,
		statuses:  &quotes.SyntheticStatusPicker{IntN: rnd.IntN},
		now:       now,
	}
	for _, product := range params.Seed.Products {
		if product.IsSparePart() {
			p.spares = append(p.spares, product)
		} else {
			p.equipment = append(p.equipment, product)
		}
	}
	return p, nil
}

type Options struct {
	DryRun bool
	// SkipCatalog leaves /products untouched.
	SkipCatalog bool
}

// RepResult is what was generated for one sales rep.
type RepResult struct {
	RepID    string          `json:"rep_id"`
	Clients  int             `json:"clients"`
	Quotes   int             `json:"quotes"`
	Projects int             `json:"projects"`
	Sales    decimal.Decimal `json:"sales"`
}

type Report struct {
	Summary models.PopulationSummary `json:"summary"`
	Reps    []RepResult              `json:"reps"`
	Paths   int                      `json:"paths"`
	Chunks  int                      `json:"chunks"`
	DryRun  bool                     `json:"dry_run"`
}

// Run generates the dataset and commits it as one chunked update, in
// generation order: catalog, then per rep its clients, quotes, projects and
// profile, then the summary.
func (p *Populator) Run(ctx context.Context, opts Options) (Report, error) {
	ctx = p.logg.WithField(ctx, "job", "populate")
	update, report, err := p.Generate(ctx, !opts.SkipCatalog)
	if err != nil {
		return report, err
	}
	report.DryRun = opts.DryRun
	report.Paths = update.Len()

	if opts.DryRun {
		chunks, err := p.sync.Plan(update)
		if err != nil {
			return report, err
		}
		report.Chunks = len(chunks)
		return report, nil
	}
	res, err := p.sync.Commit(ctx, update)
	report.Chunks = res.Chunks
	if err != nil {
		return report, err
	}
	p.logg.Info(p.logg.WithFields(ctx, map[string]any{
		"users":    report.Summary.UsersCreated,
		"clients":  report.Summary.ClientsCreated,
		"quotes":   report.Summary.QuotesCreated,
		"projects": report.Summary.ProjectsCreated,
		"sales":    report.Summary.TotalSalesGenerated.String(),
	}), "population complete")
	return report, nil
}

// Generate builds the update without writing it.
func (p *Populator) Generate(ctx context.Context, withCatalog bool) (*batch.Update, Report, error) {
	update := batch.NewUpdate("populate")
	var report Report

	if withCatalog {
		for _, product := range p.seed.Products {
			value, err := models.ToValue(&product)
			if err != nil {
				return nil, report, fmt.Errorf("product %s: %w", product.SKU, err)
			}
			update.Set(treestore.Join(catalog.Root, product.SKU), value)
		}
	}

	now := p.now().UTC()
	total := decimal.Zero
	var regions []string
	seen := map[string]bool{}
	for _, rep := range p.seed.SalesTeam {
		res, err := p.populateRep(ctx, update, rep, now)
		if err != nil {
			return nil, report, fmt.Errorf("sales rep %s: %w", rep.ID, err)
		}
		report.Reps = append(report.Reps, res)
		report.Summary.UsersCreated++
		report.Summary.ClientsCreated += res.Clients
		report.Summary.QuotesCreated += res.Quotes
		report.Summary.ProjectsCreated += res.Projects
		total = total.Add(res.Sales)
		if !seen[rep.Region] {
			seen[rep.Region] = true
			regions = append(regions, rep.Region)
		}
	}

	summary := &report.Summary
	summary.PopulatedAt = now
	summary.ScriptVersion = ScriptVersion
	summary.TotalSalesGenerated = models.Round2(total)
	summary.Currency = p.currency
	summary.RegionsCovered = regions
	if summary.UsersCreated > 0 {
		summary.AverageSalesPerRep = total.Div(decimal.NewFromInt(int64(summary.UsersCreated))).Round(0)
	}
	value, err := models.ToValue(summary)
	if err != nil {
		return nil, report, fmt.Errorf("population summary: %w", err)
	}
	update.Set(SummaryPath, value)
	return update, report, nil
}

func (p *Populator) populateRep(ctx context.Context, update *batch.Update, rep models.SalesRep, now time.Time) (RepResult, error) {
	res := RepResult{RepID: rep.ID, Sales: decimal.Zero}
	clients := make([]models.Client, 0, 5)
	for i := range p.rnd.IntN(3) + 3 {
		client := p.newClient(rep, i, now)
		if err := p.set(update, quotes.ClientPath(&client), &client); err != nil {
			return res, err
		}
		clients = append(clients, client)
	}
	res.Clients = len(clients)

	for _, client := range clients {
		for range p.rnd.IntN(2) + 2 {
			quote, err := p.newQuote(ctx, rep, client, p.statuses.Pick(equipmentStatuses...), false, now)
			if err != nil {
				return res, err
			}
			if err := p.set(update, quotes.QuotePath(quote), quote); err != nil {
				return res, err
			}
			res.Quotes++
			if quote.Status == enums.QuoteStatusClosedWon {
				res.Sales = res.Sales.Add(quote.Total)
			}
			project, ok := quotes.MaybeProject(quote, client, p.threshold)
			if !ok {
				continue
			}
			p.dressProject(project, now)
			if err := p.set(update, quotes.ProjectPath(project), project); err != nil {
				return res, err
			}
			res.Projects++
		}
		for range p.rnd.IntN(2) + 1 {
			quote, err := p.newQuote(ctx, rep, client, enums.QuoteStatusClosedWon, true, now)
			if err != nil {
				return res, err
			}
			if err := p.set(update, quotes.QuotePath(quote), quote); err != nil {
				return res, err
			}
			res.Quotes++
			res.Sales = res.Sales.Add(quote.Total)
		}
	}

	profile := &models.UserProfile{
		SalesRep:          rep,
		Role:              enums.RoleSales,
		TotalClients:      res.Clients,
		TotalQuotes:       res.Quotes,
		TotalProjects:     res.Projects,
		TotalSalesYTD:     res.Sales.Round(0),
		TargetAchievement: models.TargetAchievementPct(res.Sales, rep.SalesTargetAnnual).Round(0),
		LastActivity:      now,
		CreatedAt:         p.randomDate(now, 365),
		UpdatedAt:         now,
	}
	if err := p.set(update, treestore.Join("users", rep.ID), profile); err != nil {
		return res, err
	}
	p.logg.Info(p.logg.WithFields(ctx, map[string]any{
		"rep_id":   rep.ID,
		"clients":  res.Clients,
		"quotes":   res.Quotes,
		"projects": res.Projects,
	}), "sales rep generated")
	return res, nil
}

func (p *Populator) set(update *batch.Update, path string, v models.Validator) error {
	value, err := models.ToValue(v)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	update.Set(path, value)
	return nil
}

func (p *Populator) newClient(rep models.SalesRep, index int, now time.Time) models.Client {
	tmpl := p.seed.ClientTemplates[index%len(p.seed.ClientTemplates)]
	company := strings.ReplaceAll(tmpl.Company, "{city}", rep.City)
	contact := pick(p.rnd, p.seed.ContactNames)
	state := rep.Territory[0]
	created := p.randomDate(now, 60)
	return models.Client{
		ID:                 treestore.NewKeyAt(created),
		Company:            company,
		ContactName:        contact,
		Email:              contactEmail(contact, company),
		Phone:              p.phone(),
		Address:            p.address(rep.City, state),
		City:               rep.City,
		State:              state,
		Country:            defaultCountry,
		BusinessType:       tmpl.BusinessType,
		Employees:          max(tmpl.Employees+p.rnd.IntN(50)-25, 1),
		AnnualRevenue:      tmpl.AnnualRevenue,
		Status:             "active",
		AssignedSalesRepID: rep.ID,
		Notes:              fmt.Sprintf("Cliente asignado a %s - %s", rep.Name, rep.Title),
		TaxID:              "RFC" + p.taxSuffix(),
		PaymentTerms:       pick(p.rnd, paymentTerms),
		CreditLimit:        decimal.NewFromInt(int64(p.rnd.IntN(500000) + 100000)),
		LastOrderDate:      p.randomDate(now, 30),
		CreatedAt:          created,
		UpdatedAt:          now,
	}
}

func (p *Populator) newQuote(ctx context.Context, rep models.SalesRep, client models.Client, status enums.QuoteStatus, spares bool, now time.Time) (*models.Quote, error) {
	return p.builder.Build(ctx, quotes.BuildInput{
		Client:    client,
		Rep:       rep,
		Items:     p.pickItems(spares),
		Catalog:   p.catalog,
		Status:    status,
		Notes:     pick(p.rnd, p.seed.QuoteNotes),
		CreatedAt: p.randomDate(now, 90),
	})
}

// pickItems draws 1-4 equipment lines of 1-3 units, or 3-8 spare part lines
// of 1-10 units. Repeated draws of a SKU are dropped.
func (p *Populator) pickItems(spares bool) []pricing.ItemRequest {
	pool, draws, maxQty := p.equipment, p.rnd.IntN(4)+1, 3
	if spares {
		pool, draws, maxQty = p.spares, p.rnd.IntN(6)+3, 10
	}
	seen := map[string]bool{}
	items := make([]pricing.ItemRequest, 0, draws)
	for range draws {
		product := pick(p.rnd, pool)
		if seen[product.SKU] {
			continue
		}
		seen[product.SKU] = true
		items = append(items, pricing.ItemRequest{ProductID: product.SKU, Quantity: p.rnd.IntN(maxQty) + 1})
	}
	return items
}

// dressProject gives a generated project a varied name and stage.
func (p *Populator) dressProject(project *models.Project, now time.Time) {
	project.Name = pick(p.rnd, p.seed.ProjectNames)
	project.Status = pick(p.rnd, enums.ProjectStatuses())
	project.Notes += projectSuffix
	project.EstimatedCompletion = now.Add(45 * day)
	project.UpdatedAt = now
}

func (p *Populator) randomDate(now time.Time, daysBack int) time.Time {
	span := int64(daysBack) * int64(day)
	return now.Add(-time.Duration(p.rnd.Int64N(span))).Truncate(time.Millisecond)
}

func (p *Populator) phone() string {
	n := fmt.Sprint(p.rnd.IntN(9000000) + 1000000)
	return fmt.Sprintf("+52 %s %s-%s", pick(p.rnd, p.seed.AreaCodes), n[:3], n[3:])
}

func (p *Populator) address(city, state string) string {
	return fmt.Sprintf("%s %d, Col. %s, %s, %s, C.P. %d",
		pick(p.rnd, p.seed.Streets), p.rnd.IntN(9999)+1, pick(p.rnd, p.seed.Colonies),
		city, state, p.rnd.IntN(90000)+10000)
}

func (p *Populator) taxSuffix() string {
	var b strings.Builder
	for range 10 {
		b.WriteByte(taxAlphabet[p.rnd.IntN(len(taxAlphabet))])
	}
	return b.String()
}

func contactEmail(contact, company string) string {
	local := accentFold.Replace(strings.ToLower(contact))
	local = strings.Join(strings.Fields(local), ".")
	domain := nonAlnum.ReplaceAllString(accentFold.Replace(strings.ToLower(company)), "")
	return local + "@" + domain + ".com.mx"
}

func pick[T any](rnd *rand.Rand, list []T) T {
	return list[rnd.IntN(len(list))]
}
