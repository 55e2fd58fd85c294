package repository

import (
	"context"

	"github.com/abrezinsky/revista/internal/models"
)

// ==================== Catalog Methods ====================

// ListCatalogOptions returns every option ordered by characteristic then option
func (r *Repository) ListCatalogOptions(ctx context.Context) ([]models.CatalogOption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT characteristic, characteristic_label, characteristic_order, option_id, option_label, points, display_order
		FROM catalog_options
		ORDER BY characteristic_order, characteristic, display_order, option_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.CatalogOption
	for rows.Next() {
		var o models.CatalogOption
		if err := rows.Scan(&o.Characteristic, &o.CharacteristicLabel, &o.CharacteristicOrder,
			&o.OptionID, &o.OptionLabel, &o.Points, &o.DisplayOrder); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// ReplaceCatalog swaps the whole catalog in one transaction
func (r *Repository) ReplaceCatalog(ctx context.Context, options []models.CatalogOption) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_options`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_options (characteristic, characteristic_label, characteristic_order, option_id, option_label, points, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range options {
		if _, err := stmt.ExecContext(ctx, o.Characteristic, o.CharacteristicLabel, o.CharacteristicOrder,
			o.OptionID, o.OptionLabel, o.Points, o.DisplayOrder); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountCatalogOptions returns the number of catalog rows
func (r *Repository) CountCatalogOptions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_options`).Scan(&count)
	return count, err
}
