package inventory

import (
	"context"
	"sort"

	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/catalog"
	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

// SKUChange is one planned SKU repair.
type SKUChange struct {
	Key    string `json:"key"`
	OldSKU string `json:"old_sku"`
	NewSKU string `json:"new_sku"`
	// Renamed is set when the product node moves to the new SKU as its key.
	Renamed bool `json:"renamed"`
}

type CleanupReport struct {
	Changes   []SKUChange `json:"changes"`
	Malformed int         `json:"malformed"`
	Paths     int         `json:"paths"`
	Chunks    int         `json:"chunks"`
	DryRun    bool        `json:"dry_run"`
}

// CleanSKUs strips forbidden characters from product SKUs. A product keyed
// by its own SKU is moved to the cleaned key, keeping every field; other
// products only get their sku field rewritten. If any cleaned SKU would land
// on an existing product or on another cleaned SKU, nothing is written.
func (s *Service) CleanSKUs(ctx context.Context, dryRun bool) (CleanupReport, error) {
	report := CleanupReport{DryRun: dryRun}
	keys := map[string]bool{}
	var changes []SKUChange
	for product, err := range s.catalog.ListByPrefix(ctx, "") {
		if err != nil {
			if ctx.Err() != nil || pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				return report, err
			}
			report.Malformed++
			continue
		}
		keys[product.Key] = true
		clean := models.NormalizeSKU(product.SKU)
		if clean == product.SKU {
			continue
		}
		changes = append(changes, SKUChange{
			Key:     product.Key,
			OldSKU:  product.SKU,
			NewSKU:  clean,
			Renamed: product.Key == product.SKU,
		})
	}

	conflicts := map[string]string{}
	targets := map[string]string{}
	for _, c := range changes {
		if c.NewSKU == "" {
			conflicts[c.Key] = "sku is empty after cleaning"
			continue
		}
		if !c.Renamed {
			continue
		}
		if keys[c.NewSKU] {
			conflicts[c.Key] = "product " + c.NewSKU + " already exists"
			continue
		}
		if other, taken := targets[c.NewSKU]; taken {
			conflicts[c.Key] = "cleans to the same sku as " + other
			continue
		}
		targets[c.NewSKU] = c.Key
	}
	if len(conflicts) > 0 {
		return report, pkgerrors.New(pkgerrors.CodeConflict, "cleaned skus collide").WithDetails(conflicts)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	update := batch.NewUpdate("sku_cleanup")
	for _, c := range changes {
		if !c.Renamed {
			update.Set(treestore.Join(catalog.Root, c.Key, "sku"), c.NewSKU)
			continue
		}
		raw, ok, err := s.store.Read(ctx, treestore.Join(catalog.Root, c.Key))
		if err != nil {
			return report, err
		}
		if !ok {
			continue
		}
		node, isMap := raw.(map[string]any)
		if !isMap {
			report.Malformed++
			continue
		}
		node["sku"] = c.NewSKU
		update.Rename(catalog.Root, c.Key, c.NewSKU, node)
	}
	report.Changes = changes
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
		"changes": len(changes),
		"paths":   report.Paths,
	}), "sku cleanup committed")
	return report, nil
}
