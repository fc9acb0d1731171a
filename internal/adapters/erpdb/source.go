// Package erpdb reads products and inventory straight from the ERP
// database with configurable queries.
package erpdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shopify-reconciler/internal/config"
	"shopify-reconciler/internal/domain/model"
)

// Source runs the products and inventory queries. The products query must
// return (sku, price); the inventory query (sku, initial, received, shipped,
// recorded_at). Values are read as text and validated downstream.
type Source struct {
	db             *sql.DB
	productsQuery  string
	inventoryQuery string
}

func NewSource(db *sql.DB, cfg config.LocalConfig) *Source {
	return &Source{
		db:             db,
		productsQuery:  strings.TrimSpace(cfg.ProductsQuery),
		inventoryQuery: strings.TrimSpace(cfg.InventoryQuery),
	}
}

func (s *Source) FetchProducts(ctx context.Context) ([]model.LocalProduct, error) {
	var products []model.LocalProduct
	err := s.query(ctx, s.productsQuery, 2, func(values []sql.NullString) {
		products = append(products, model.LocalProduct{
			Sku:       values[0].String,
			BasePrice: values[1].String,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("erp products query: %w", err)
	}
	return products, nil
}

func (s *Source) FetchInventory(ctx context.Context) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	err := s.query(ctx, s.inventoryQuery, 5, func(values []sql.NullString) {
		records = append(records, model.InventoryRecord{
			Sku:         values[0].String,
			InitialQty:  values[1].String,
			ReceivedQty: values[2].String,
			ShippedQty:  values[3].String,
			RecordedAt:  values[4].String,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("erp inventory query: %w", err)
	}
	return records, nil
}

func (s *Source) query(ctx context.Context, query string, columns int, row func([]sql.NullString)) error {
	if s == nil || s.db == nil {
		return errors.New("erp database is nil")
	}
	if query == "" {
		return errors.New("query is empty")
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(names) < columns {
		return model.NewInvalidData("columns", strings.Join(names, ","), fmt.Sprintf("expected %d columns", columns))
	}

	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		row(append([]sql.NullString(nil), values[:columns]...))
	}
	return rows.Err()
}
