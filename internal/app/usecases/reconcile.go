package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopify-reconciler/internal/domain/inventory"
	"shopify-reconciler/internal/domain/model"
	"shopify-reconciler/internal/domain/pricing"
	"shopify-reconciler/internal/domain/sku"
	"shopify-reconciler/internal/logging"
)

const defaultUpdateConcurrency = 8

// FetchError is a failed source read. It aborts the run before any write.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ReconcileOptions struct {
	JoinMode          model.JoinMode
	Scope             model.SyncScope
	DryRun            bool
	UpdateConcurrency int
	// Stop, when closed, prevents further items from being dispatched.
	// Items already running finish on the context passed to Run.
	Stop <-chan struct{}
}

type Reconciler struct {
	local     LocalSource
	discounts DiscountSource
	catalog   CatalogFetcher
	updater   VariantUpdater
	logger    logging.LoggerService
	options   ReconcileOptions
	now       func() time.Time
}

// NewReconciler wires the run. discounts may be nil.
func NewReconciler(local LocalSource, discounts DiscountSource, catalog CatalogFetcher, updater VariantUpdater, logger logging.LoggerService, options ReconcileOptions) *Reconciler {
	if options.JoinMode == "" {
		options.JoinMode = model.JoinRemoteFirst
	}
	if options.Scope == "" {
		options.Scope = model.ScopeBoth
	}
	if options.UpdateConcurrency <= 0 {
		options.UpdateConcurrency = defaultUpdateConcurrency
	}
	return &Reconciler{
		local:     local,
		discounts: discounts,
		catalog:   catalog,
		updater:   updater,
		logger:    logger,
		options:   options,
		now:       time.Now,
	}
}

type sources struct {
	products  []model.LocalProduct
	inventory []model.InventoryRecord
	discounts []model.DiscountEntry
	remote    *sku.Index[model.RemoteVariant]
}

type localIndexes struct {
	products  *sku.Index[model.LocalProduct]
	inventory *sku.Index[[]model.InventoryRecord]
	discounts *sku.Index[model.DiscountEntry]
}

// workItem is one SKU after the join. remote is nil for notFoundRemote.
type workItem struct {
	canonical string
	product   *model.LocalProduct
	records   []model.InventoryRecord
	discount  *model.DiscountEntry
	remote    *model.RemoteVariant
}

func (w workItem) hasLocal() bool {
	return w.product != nil || len(w.records) > 0
}

// plan is the decided update for a matched item.
type plan struct {
	sku             string
	request         model.VariantUpdateRequest
	updatePrice     bool
	updateInventory bool
}

// Run fetches every source, joins on normalized SKU and writes the
// differences. Only fetch failures are returned as errors; item failures
// are recorded in the summary.
func (r *Reconciler) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{
		RunID:   uuid.NewString(),
		Mode:    r.options.JoinMode,
		Scope:   r.options.Scope,
		DryRun:  r.options.DryRun,
		Started: r.now(),
	}
	logger := r.logger.With(zap.String("run_id", summary.RunID))
	logger.Log("Sync started",
		zap.String("join_mode", string(summary.Mode)),
		zap.String("scope", string(summary.Scope)),
		zap.Bool("dry_run", summary.DryRun))

	fetched, err := r.fetch(ctx)
	if err != nil {
		summary.Duration = time.Since(summary.Started)
		summary.Aborted = err.Error()
		return summary, err
	}

	indexes := r.index(logger, fetched)
	items, outcomes := r.join(indexes, fetched.remote)

	var plans []plan
	for _, item := range items {
		p, outcome := r.decide(logger, item)
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
			continue
		}
		plans = append(plans, p)
	}
	logger.Log(fmt.Sprintf("Sync planned matched=%d changes=%d", len(items), len(plans)))

	outcomes = append(outcomes, r.apply(ctx, logger, plans)...)
	for _, outcome := range outcomes {
		summary.Add(outcome)
	}
	summary.Duration = time.Since(summary.Started)

	logger.LogSuccess(fmt.Sprintf(
		"Sync completed processed=%d price_updates=%d inventory_updates=%d no_change=%d not_found_local=%d not_found_remote=%d invalid=%d errors=%d interrupted=%d",
		summary.Processed, summary.PriceUpdates(), summary.InventoryUpdates(), summary.NoChange,
		summary.NotFoundLocal, summary.NotFoundRemote, summary.InvalidData, summary.Errors, summary.Interrupted),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (r *Reconciler) fetch(ctx context.Context) (sources, error) {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if r.options.Stop != nil {
		go func() {
			select {
			case <-r.options.Stop:
				cancel()
			case <-fetchCtx.Done():
			}
		}()
	}

	var out sources
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		products, err := r.local.FetchProducts(gctx)
		if err != nil {
			return &FetchError{Source: "local products", Err: err}
		}
		out.products = products
		return nil
	})
	if r.options.Scope.Inventory() {
		g.Go(func() error {
			records, err := r.local.FetchInventory(gctx)
			if err != nil {
				return &FetchError{Source: "local inventory", Err: err}
			}
			out.inventory = records
			return nil
		})
	}
	if r.discounts != nil && r.options.Scope.Price() {
		g.Go(func() error {
			entries, err := r.discounts.Load(gctx)
			if err != nil {
				return &FetchError{Source: "discounts", Err: err}
			}
			out.discounts = entries
			return nil
		})
	}
	g.Go(func() error {
		remote, err := r.catalog.FetchAll(gctx)
		if err != nil {
			return &FetchError{Source: "remote catalog", Err: err}
		}
		out.remote = remote
		return nil
	})
	if err := g.Wait(); err != nil {
		return sources{}, err
	}
	return out, nil
}

func (r *Reconciler) index(logger logging.LoggerService, in sources) localIndexes {
	idx := localIndexes{
		products:  sku.NewIndex[model.LocalProduct](),
		inventory: sku.NewIndex[[]model.InventoryRecord](),
		discounts: sku.NewIndex[model.DiscountEntry](),
	}
	for _, product := range in.products {
		key, _, replaced := idx.products.Put(product.Sku, product)
		if !key.Valid {
			logger.LogWarning("local product without usable sku skipped", zap.String("raw_sku", product.Sku))
			continue
		}
		if replaced {
			logger.LogWarning("duplicate local product sku, last record wins", zap.String("sku", key.Canonical))
		}
	}
	for _, record := range in.inventory {
		key := sku.Normalize(record.Sku)
		if !key.Valid {
			logger.LogWarning("inventory record without usable sku skipped", zap.String("raw_sku", record.Sku))
			continue
		}
		existing, _ := idx.inventory.Get(key.Canonical)
		idx.inventory.Put(record.Sku, append(existing, record))
	}
	for _, entry := range in.discounts {
		key, _, replaced := idx.discounts.Put(entry.Sku, entry)
		if !key.Valid {
			logger.LogWarning("discount without usable sku skipped", zap.String("raw_sku", entry.Sku))
			continue
		}
		if replaced {
			logger.LogWarning("duplicate discount sku, last entry wins", zap.String("sku", key.Canonical))
		}
	}
	logger.Log(fmt.Sprintf("Sources indexed products=%d inventory=%d discounts=%d remote=%d",
		idx.products.Len(), idx.inventory.Len(), idx.discounts.Len(), in.remote.Len()))
	return idx
}

// join pairs local and remote records in the configured direction. Items
// present on one side only become outcomes straight away.
func (r *Reconciler) join(idx localIndexes, remote *sku.Index[model.RemoteVariant]) ([]workItem, []model.UpdateOutcome) {
	var (
		items    []workItem
		outcomes []model.UpdateOutcome
	)
	withLocal := func(canonical string, key sku.Key) workItem {
		item := workItem{canonical: canonical}
		if product, _, ok := idx.products.LookupKey(key); ok {
			item.product = &product
		}
		if r.options.Scope.Inventory() {
			if records, _, ok := idx.inventory.LookupKey(key); ok {
				item.records = records
			}
		}
		if entry, _, ok := idx.discounts.LookupKey(key); ok {
			item.discount = &entry
		}
		return item
	}

	switch r.options.JoinMode {
	case model.JoinLocalFirst:
		for _, canonical := range r.localKeys(idx) {
			item := withLocal(canonical, sku.Normalize(canonical))
			variant, _, ok := remote.LookupKey(sku.Normalize(canonical))
			if !ok {
				outcomes = append(outcomes, model.UpdateOutcome{
					Sku:    r.displaySku(idx, canonical),
					Status: model.StatusNotFoundRemote,
					Detail: "no shopify variant with this sku",
				})
				continue
			}
			item.remote = &variant
			items = append(items, item)
		}
	default:
		for _, canonical := range remote.Keys() {
			variant, _ := remote.Get(canonical)
			item := withLocal(canonical, sku.Normalize(variant.Sku))
			if !item.hasLocal() {
				outcomes = append(outcomes, model.UpdateOutcome{
					Sku:    variant.Sku,
					Status: model.StatusNotFoundLocal,
					Detail: "no local record for this sku",
				})
				continue
			}
			item.remote = &variant
			items = append(items, item)
		}
	}
	return items, outcomes
}

// localKeys is the sorted union of product keys and, when inventory is in
// scope, inventory keys.
func (r *Reconciler) localKeys(idx localIndexes) []string {
	keys := idx.products.Keys()
	if !r.options.Scope.Inventory() {
		return keys
	}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		seen[key] = struct{}{}
	}
	merged := append([]string(nil), keys...)
	for _, key := range idx.inventory.Keys() {
		if _, ok := seen[key]; !ok {
			merged = append(merged, key)
		}
	}
	sort.Strings(merged)
	return merged
}

func (r *Reconciler) displaySku(idx localIndexes, canonical string) string {
	if raw := idx.products.Raw(canonical); raw != "" {
		return raw
	}
	if raw := idx.inventory.Raw(canonical); raw != "" {
		return raw
	}
	return canonical
}

// decide computes the targets for one matched item. It returns either a
// plan with at least one change or a final outcome.
func (r *Reconciler) decide(logger logging.LoggerService, item workItem) (plan, *model.UpdateOutcome) {
	remote := item.remote
	itemLogger := logger.With(zap.String("sku", remote.Sku), zap.String("variant_id", remote.VariantID))
	p := plan{
		sku: remote.Sku,
		request: model.VariantUpdateRequest{
			Sku:             remote.Sku,
			VariantID:       remote.VariantID,
			ProductID:       remote.ProductID,
			InventoryItemID: remote.InventoryItemID,
			Price:           remote.Price,
			CompareAtPrice:  remote.CompareAtPrice,
		},
	}
	var (
		computed int
		invalid  []string
	)

	if r.options.Scope.Price() {
		result, err := r.targetPrice(itemLogger, item)
		switch {
		case err != nil:
			invalid = append(invalid, err.Error())
			itemLogger.LogWarning("price target skipped", zap.Error(err))
		default:
			computed++
			p.request.Price = result.FinalPrice
			p.request.CompareAtPrice = result.CompareAtPrice
			p.updatePrice = !pricing.Equal(remote.Price, result.FinalPrice) ||
				!pricing.EqualOptional(remote.CompareAtPrice, result.CompareAtPrice)
		}
	}

	if r.options.Scope.Inventory() {
		switch {
		case !remote.Tracked || remote.InventoryItemID == "":
			itemLogger.LogWarning("inventory skipped, variant is not tracked")
		case remote.Available == nil:
			itemLogger.LogWarning("inventory skipped, current level at sync location is unknown")
		default:
			available, err := r.targetAvailable(itemLogger, item)
			if err != nil {
				invalid = append(invalid, err.Error())
				itemLogger.LogWarning("inventory target skipped", zap.Error(err))
				break
			}
			computed++
			p.request.Available = available
			p.updateInventory = available != *remote.Available
		}
	}

	switch {
	case computed == 0 && len(invalid) > 0:
		return plan{}, &model.UpdateOutcome{
			Sku:    remote.Sku,
			Status: model.StatusInvalidData,
			Detail: strings.Join(invalid, "; "),
		}
	case !p.updatePrice && !p.updateInventory:
		detail := ""
		if len(invalid) > 0 {
			detail = strings.Join(invalid, "; ")
		}
		return plan{}, &model.UpdateOutcome{
			Sku:     remote.Sku,
			Status:  model.StatusNoChange,
			Success: true,
			Detail:  detail,
		}
	}
	return p, nil
}

func (r *Reconciler) targetPrice(logger logging.LoggerService, item workItem) (pricing.Result, error) {
	if item.product == nil {
		return pricing.Result{}, model.NewInvalidData("price", "", "no local product record")
	}
	base, err := pricing.ParsePrice(item.product.BasePrice)
	if err != nil {
		return pricing.Result{}, err
	}
	if item.discount == nil {
		return pricing.ApplyDiscount(base, 0), nil
	}
	if !pricing.ValidPercent(item.discount.PercentOff) {
		logger.LogWarning("discount out of range ignored", zap.Float64("percent_off", item.discount.PercentOff))
	}
	return pricing.ApplyDiscount(base, item.discount.PercentOff), nil
}

func (r *Reconciler) targetAvailable(logger logging.LoggerService, item workItem) (int, error) {
	if len(item.records) == 0 {
		return 0, model.NewInvalidData("inventory", "", "no local inventory records")
	}
	return inventory.ComputeAvailable(item.records, func(message string) {
		logger.LogWarning(message)
	})
}

// apply writes the plans with bounded concurrency. Every item settles; one
// failure never cancels the others.
func (r *Reconciler) apply(ctx context.Context, logger logging.LoggerService, plans []plan) []model.UpdateOutcome {
	outcomes := make([]model.UpdateOutcome, len(plans))
	if len(plans) == 0 {
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(r.options.UpdateConcurrency)
	dispatched := 0
	for i, p := range plans {
		if r.stopped() {
			break
		}
		dispatched++
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = r.update(ctx, logger, p)
			return nil
		})
	}
	_ = g.Wait()

	if dispatched < len(plans) {
		logger.LogWarning(fmt.Sprintf("sync interrupted, %d items not dispatched", len(plans)-dispatched))
		for i := dispatched; i < len(plans); i++ {
			outcomes[i] = model.UpdateOutcome{
				Sku:    plans[i].sku,
				Status: model.StatusInterrupted,
				Detail: "not dispatched before shutdown",
			}
		}
	}
	return outcomes
}

func (r *Reconciler) stopped() bool {
	if r.options.Stop == nil {
		return false
	}
	select {
	case <-r.options.Stop:
		return true
	default:
		return false
	}
}

// update writes price first, then inventory. A failed price does not stop
// the inventory write.
func (r *Reconciler) update(ctx context.Context, logger logging.LoggerService, p plan) model.UpdateOutcome {
	itemLogger := logger.With(zap.String("sku", p.sku), zap.String("variant_id", p.request.VariantID))
	outcome := model.UpdateOutcome{Sku: p.sku, Status: model.StatusUpdated}

	if r.options.DryRun {
		outcome.PriceChanged = p.updatePrice
		outcome.InventoryChanged = p.updateInventory
		outcome.Success = true
		outcome.Detail = "dry run"
		itemLogger.Log("dry run, update not sent", planFields(p)...)
		return outcome
	}

	var failures []string
	var interrupted bool
	if p.updatePrice {
		if err := r.updater.UpdatePrice(ctx, p.request); err != nil {
			interrupted = interrupted || isInterrupted(ctx, err)
			failures = append(failures, "price: "+err.Error())
			itemLogger.LogWarning("price update failed", zap.Error(err))
		} else {
			outcome.PriceChanged = true
		}
	}
	if p.updateInventory {
		if err := r.updater.SetAvailable(ctx, p.request); err != nil {
			interrupted = interrupted || isInterrupted(ctx, err)
			failures = append(failures, "inventory: "+err.Error())
			itemLogger.LogWarning("inventory update failed", zap.Error(err))
		} else {
			outcome.InventoryChanged = true
		}
	}

	switch {
	case len(failures) == 0:
		outcome.Success = true
		itemLogger.Log("variant updated", planFields(p)...)
	case interrupted:
		outcome.Status = model.StatusInterrupted
		outcome.Detail = strings.Join(failures, "; ")
	default:
		outcome.Status = model.StatusError
		outcome.Detail = strings.Join(failures, "; ")
	}
	return outcome
}

func isInterrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func planFields(p plan) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if p.updatePrice {
		fields = append(fields, zap.String("price", pricing.Format(p.request.Price)))
		compareAt := ""
		if p.request.CompareAtPrice != nil {
			compareAt = pricing.Format(*p.request.CompareAtPrice)
		}
		fields = append(fields, zap.String("compare_at_price", compareAt))
	}
	if p.updateInventory {
		fields = append(fields, zap.Int("available", p.request.Available))
	}
	return fields
}
