package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/abrezinsky/revista/internal/models"
)

// ==================== Vehicle Methods ====================

const vehicleSelect = `
	SELECT v.id, v.concession_id, v.plate, v.serial, v.engine_number, v.brand, v.model, v.year,
		v.color, v.capacity, v.fuel_type, v.photo_url, c.number, h.name
	FROM vehicles v
	LEFT JOIN concessions c ON v.concession_id = c.id
	LEFT JOIN holders h ON c.holder_id = h.id`

func scanVehicle(row interface{ Scan(...any) error }) (models.Vehicle, error) {
	var v models.Vehicle
	var concessionID, year, capacity sql.NullInt64
	var engine, brand, model, color, fuel, photo, number, holder sql.NullString
	err := row.Scan(&v.ID, &concessionID, &v.Plate, &v.Serial, &engine, &brand, &model, &year,
		&color, &capacity, &fuel, &photo, &number, &holder)
	if err != nil {
		return v, err
	}
	if concessionID.Valid {
		id := int(concessionID.Int64)
		v.ConcessionID = &id
	}
	v.EngineNumber = engine.String
	v.Brand = brand.String
	v.Model = model.String
	v.Year = int(year.Int64)
	v.Color = color.String
	v.Capacity = int(capacity.Int64)
	v.FuelType = fuel.String
	v.PhotoURL = photo.String
	v.ConcessionNumber = number.String
	v.HolderName = holder.String
	return v, nil
}

func (r *Repository) queryVehicles(ctx context.Context, where string, args ...any) ([]models.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, vehicleSelect+` WHERE v.active = 1`+where+` ORDER BY v.plate`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// ListVehicles returns all active vehicles
func (r *Repository) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return r.queryVehicles(ctx, "")
}

// ListVehiclesByConcession returns the active vehicles under one concession
func (r *Repository) ListVehiclesByConcession(ctx context.Context, concessionID int) ([]models.Vehicle, error) {
	return r.queryVehicles(ctx, ` AND v.concession_id = ?`, concessionID)
}

// GetVehicle returns an active vehicle by ID
func (r *Repository) GetVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, vehicleSelect+` WHERE v.id = ? AND v.active = 1`, id)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVehicleByPlate returns an active vehicle by plate, ignoring case
func (r *Repository) GetVehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, vehicleSelect+` WHERE upper(v.plate) = ? AND v.active = 1`, strings.ToUpper(plate))
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// VehicleExists checks if an active vehicle already carries the plate
func (r *Repository) VehicleExists(ctx context.Context, plate string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles WHERE upper(plate) = ? AND active = 1`, strings.ToUpper(plate)).Scan(&count)
	return count > 0, err
}

// CreateVehicle inserts a vehicle
func (r *Repository) CreateVehicle(ctx context.Context, v models.Vehicle) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicles (concession_id, plate, serial, engine_number, brand, model, year, color, capacity, fuel_type, photo_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ConcessionID, strings.ToUpper(v.Plate), strings.ToUpper(v.Serial), v.EngineNumber, v.Brand, v.Model, v.Year,
		v.Color, v.Capacity, v.FuelType, v.PhotoURL)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateVehicle updates a vehicle
func (r *Repository) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE vehicles SET concession_id = ?, plate = ?, serial = ?, engine_number = ?, brand = ?, model = ?,
			year = ?, color = ?, capacity = ?, fuel_type = ?, photo_url = ?
		WHERE id = ? AND active = 1
	`, v.ConcessionID, strings.ToUpper(v.Plate), strings.ToUpper(v.Serial), v.EngineNumber, v.Brand, v.Model,
		v.Year, v.Color, v.Capacity, v.FuelType, v.PhotoURL, v.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteVehicle deactivates a vehicle so past inspections keep their reference
func (r *Repository) DeleteVehicle(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE vehicles SET active = 0 WHERE id = ? AND active = 1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// UpsertVehicleBySerial inserts or refreshes a vehicle keyed by its serial number
func (r *Repository) UpsertVehicleBySerial(ctx context.Context, v models.Vehicle) (bool, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `SELECT id FROM vehicles WHERE serial = ?`, strings.ToUpper(v.Serial)).Scan(&id)
	if err == sql.ErrNoRows {
		_, err := r.CreateVehicle(ctx, v)
		return err == nil, err
	}
	if err != nil {
		return false, err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE vehicles SET concession_id = ?, plate = ?, engine_number = ?, brand = ?, model = ?,
			year = ?, color = ?, capacity = ?, fuel_type = ?, photo_url = ?, active = 1
		WHERE id = ?
	`, v.ConcessionID, strings.ToUpper(v.Plate), v.EngineNumber, v.Brand, v.Model,
		v.Year, v.Color, v.Capacity, v.FuelType, v.PhotoURL, id)
	return false, err
}

// CountInspectionsForVehicle returns how many non-cancelled inspections reference the vehicle
func (r *Repository) CountInspectionsForVehicle(ctx context.Context, vehicleID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inspections WHERE vehicle_id = ? AND status != 'cancelled'`, vehicleID).Scan(&count)
	return count, err
}
