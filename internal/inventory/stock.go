// Package inventory writes warehouse stock onto catalog products and repairs
// SKUs carrying characters the catalog does not allow.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/catalog"
	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"go.uber.org/multierr"
)

// DefaultReservedWarehouse holds units that are counted but not sellable.
const DefaultReservedWarehouse = "999"

// StockInput maps a SKU to its on-hand quantity per warehouse code.
type StockInput map[string]map[string]int

// DecodeStockInput reads a StockInput from JSON.
func DecodeStockInput(r io.Reader) (StockInput, error) {
	var in StockInput
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock input")
	}
	return in, nil
}

type ServiceParams struct {
	Store             treestore.Store
	Catalog           *catalog.Accessor
	Sync              *batch.Synchronizer
	Logger            *logger.Logger
	ReservedWarehouse string
	Now               func() time.Time
}

type Service struct {
	store    treestore.Store
	catalog  *catalog.Accessor
	sync     *batch.Synchronizer
	logg     *logger.Logger
	reserved string
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil || params.Catalog == nil || params.Sync == nil {
		return nil, fmt.Errorf("store, catalog and synchronizer required")
	}
	reserved := params.ReservedWarehouse
	if reserved == "" {
		reserved = DefaultReservedWarehouse
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    params.Store,
		catalog:  params.Catalog,
		sync:     params.Sync,
		logg:     logg,
		reserved: reserved,
		now:      now,
	}, nil
}

// StockReport summarizes a stock sync.
type StockReport struct {
	Matched    int      `json:"matched"`
	Unmatched  []string `json:"unmatched,omitempty"`
	Paths      int      `json:"paths"`
	Chunks     int      `json:"chunks"`
	TotalUnits int      `json:"total_units"`
	DryRun     bool     `json:"dry_run"`
}

// SyncStock replaces the warehouse breakdown of every matched product and
// recomputes its totals. Input SKUs match a product by key or by normalized
// SKU. The three writes per product are committed together.
func (s *Service) SyncStock(ctx context.Context, input StockInput, dryRun bool) (StockReport, error) {
	if err := validateStock(input); err != nil {
		return StockReport{}, err
	}
	products, err := s.catalog.Snapshot(ctx)
	if err != nil {
		if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			return StockReport{}, err
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "skipping malformed products")
	}
	index := make(map[string]string, len(products))
	for key, p := range products {
		index[models.NormalizeSKU(p.SKU)] = key
	}
	for key := range products {
		index[key] = key
	}

	stamp := s.now().UTC()
	report := StockReport{DryRun: dryRun}
	update := batch.NewUpdate("inventory")
	for _, sku := range slices.Sorted(maps.Keys(input)) {
		key, ok := index[sku]
		if !ok {
			key, ok = index[models.NormalizeSKU(sku)]
		}
		if !ok {
			report.Unmatched = append(report.Unmatched, sku)
			continue
		}
		product := products[key]
		product.WarehouseStock = make(map[string]models.WarehouseStock, len(input[sku]))
		for warehouse, qty := range input[sku] {
			stock := models.WarehouseStock{Available: qty, LastUpdate: stamp}
			if warehouse == s.reserved {
				stock.Reserved = qty
			}
			product.WarehouseStock[warehouse] = stock
		}
		product.RecomputeStock()
		report.Matched++
		report.TotalUnits += product.TotalStock

		base := treestore.Join(catalog.Root, key)
		update.Atomic(
			batch.Entry{Path: treestore.Join(base, "warehouseStock"), Value: product.WarehouseStock},
			batch.Entry{Path: treestore.Join(base, "totalStock"), Value: float64(product.TotalStock)},
			batch.Entry{Path: treestore.Join(base, "availableStock"), Value: float64(product.AvailableStock)},
		)
	}
	report.Paths = update.Len()

	if dryRun {
		chunks, err := s.sync.Plan(update)
		if err != nil {
			return report, err
		}
		report.Chunks = len(chunks)
		return report, nil
	}
	res, err := s.sync.Commit(ctx, update)
	report.Chunks = res.Chunks
	if err != nil {
		return report, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"matched":   report.Matched,
		"unmatched": len(report.Unmatched),
		"paths":     report.Paths,
	}), "inventory stock synced")
	return report, nil
}

func validateStock(input StockInput) error {
	var errs error
	for sku, warehouses := range input {
		if len(warehouses) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: no warehouses", sku))
		}
		for warehouse, qty := range warehouses {
			if err := treestore.ValidateKey(warehouse); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: warehouse %q: %w", sku, warehouse, err))
			}
			if qty < 0 {
				errs = multierr.Append(errs, fmt.Errorf("%s: warehouse %s has negative quantity %d", sku, warehouse, qty))
			}
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid stock input")
	}
	return nil
}
