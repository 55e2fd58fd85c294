package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abrezinsky/revista/internal/models"
)

// ==================== Holder Methods ====================

const holderColumns = `h.id, h.registry_id, h.name, h.rfc, h.curp, h.phone, h.address`

func scanHolder(row interface{ Scan(...any) error }) (models.Holder, error) {
	var h models.Holder
	var registryID sql.NullInt64
	var rfc, curp, phone, address sql.NullString
	if err := row.Scan(&h.ID, &registryID, &h.Name, &rfc, &curp, &phone, &address); err != nil {
		return h, err
	}
	if registryID.Valid {
		id := int(registryID.Int64)
		h.RegistryID = &id
	}
	h.RFC = rfc.String
	h.CURP = curp.String
	h.Phone = phone.String
	h.Address = address.String
	return h, nil
}

// ListHolders returns every holder ordered by name
func (r *Repository) ListHolders(ctx context.Context) ([]models.Holder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+holderColumns+` FROM holders h ORDER BY h.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holders []models.Holder
	for rows.Next() {
		h, err := scanHolder(rows)
		if err != nil {
			return nil, err
		}
		holders = append(holders, h)
	}
	return holders, rows.Err()
}

// SearchHolders matches name, RFC, CURP or any concession number
func (r *Repository) SearchHolders(ctx context.Context, query string) ([]models.Holder, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT `+holderColumns+`
		FROM holders h
		LEFT JOIN concessions c ON c.holder_id = h.id
		WHERE lower(h.name) LIKE ? OR lower(h.rfc) LIKE ? OR lower(h.curp) LIKE ? OR lower(c.number) LIKE ?
		ORDER BY h.name
		LIMIT 100
	`, like, like, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holders []models.Holder
	for rows.Next() {
		h, err := scanHolder(rows)
		if err != nil {
			return nil, err
		}
		holders = append(holders, h)
	}
	return holders, rows.Err()
}

// GetHolder returns a holder by ID
func (r *Repository) GetHolder(ctx context.Context, id int) (*models.Holder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+holderColumns+` FROM holders h WHERE h.id = ?`, id)
	h, err := scanHolder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHolder inserts a holder
func (r *Repository) CreateHolder(ctx context.Context, h models.Holder) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO holders (registry_id, name, rfc, curp, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, h.RegistryID, h.Name, h.RFC, h.CURP, h.Phone, h.Address, now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateHolder updates a holder's contact data
func (r *Repository) UpdateHolder(ctx context.Context, h models.Holder) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE holders SET name = ?, rfc = ?, curp = ?, phone = ?, address = ?
		WHERE id = ?
	`, h.Name, h.RFC, h.CURP, h.Phone, h.Address, h.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteHolder deletes a holder and, through the cascade, their concessions
func (r *Repository) DeleteHolder(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// UpsertHolderByRegistryID inserts or refreshes a holder synced from the registry
func (r *Repository) UpsertHolderByRegistryID(ctx context.Context, h models.Holder) (int64, bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM holders WHERE registry_id = ?`, h.RegistryID).Scan(&id)
	if err == sql.ErrNoRows {
		newID, err := r.CreateHolder(ctx, h)
		return newID, true, err
	}
	if err != nil {
		return 0, false, err
	}
	h.ID = int(id)
	return id, false, r.UpdateHolder(ctx, h)
}

// ==================== Concession Methods ====================

const concessionColumns = `id, holder_id, number, modality, route, status, expires_on`

func scanConcession(row interface{ Scan(...any) error }) (models.Concession, error) {
	var c models.Concession
	var route, expiresOn sql.NullString
	if err := row.Scan(&c.ID, &c.HolderID, &c.Number, &c.Modality, &route, &c.Status, &expiresOn); err != nil {
		return c, err
	}
	c.Route = route.String
	c.ExpiresOn = expiresOn.String
	return c, nil
}

// ListConcessions returns concessions for a holder, or all when holderID is 0
func (r *Repository) ListConcessions(ctx context.Context, holderID int) ([]models.Concession, error) {
	query := `SELECT ` + concessionColumns + ` FROM concessions`
	var args []any
	if holderID != 0 {
		query += ` WHERE holder_id = ?`
		args = append(args, holderID)
	}
	query += ` ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var concessions []models.Concession
	for rows.Next() {
		c, err := scanConcession(rows)
		if err != nil {
			return nil, err
		}
		concessions = append(concessions, c)
	}
	return concessions, rows.Err()
}

// GetConcession returns a concession by ID
func (r *Repository) GetConcession(ctx context.Context, id int) (*models.Concession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+concessionColumns+` FROM concessions WHERE id = ?`, id)
	c, err := scanConcession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConcessionByNumber returns a concession by its folio number
func (r *Repository) GetConcessionByNumber(ctx context.Context, number string) (*models.Concession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+concessionColumns+` FROM concessions WHERE number = ?`, number)
	c, err := scanConcession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConcession inserts a concession
func (r *Repository) CreateConcession(ctx context.Context, c models.Concession) (int64, error) {
	status := c.Status
	if status == "" {
		status = "vigente"
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO concessions (holder_id, number, modality, route, status, expires_on)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.HolderID, c.Number, c.Modality, c.Route, status, c.ExpiresOn)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateConcession updates a concession
func (r *Repository) UpdateConcession(ctx context.Context, c models.Concession) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE concessions SET holder_id = ?, number = ?, modality = ?, route = ?, status = ?, expires_on = ?
		WHERE id = ?
	`, c.HolderID, c.Number, c.Modality, c.Route, c.Status, c.ExpiresOn, c.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// UpsertConcessionByNumber inserts or refreshes a concession keyed by its number
func (r *Repository) UpsertConcessionByNumber(ctx context.Context, c models.Concession) (int64, bool, error) {
	existing, err := r.GetConcessionByNumber(ctx, c.Number)
	if err == ErrNotFound {
		id, err := r.CreateConcession(ctx, c)
		return id, true, err
	}
	if err != nil {
		return 0, false, err
	}
	c.ID = existing.ID
	if c.Status == "" {
		c.Status = existing.Status
	}
	return int64(existing.ID), false, r.UpdateConcession(ctx, c)
}

// requireAffected turns a no-op update or delete into ErrNotFound
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
