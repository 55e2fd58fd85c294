package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// ==================== Inspection Methods ====================

// InspectionFilter narrows ListInspections. Zero values match everything.
type InspectionFilter struct {
	VehicleID int
	Status    string
	Limit     int
}

const inspectionSelect = `
	SELECT i.id, i.folio, i.vehicle_id, i.inspector, i.answers, i.score, i.max_score,
		i.classification, i.classification_id, i.rejected, i.complete, i.status, i.observations,
		i.schema_version, i.created_at, i.updated_at, i.submitted_at, i.certified_at,
		v.plate, c.number
	FROM inspections i
	LEFT JOIN vehicles v ON i.vehicle_id = v.id
	LEFT JOIN concessions c ON v.concession_id = c.id`

func scanInspection(row interface{ Scan(...any) error }) (models.Inspection, error) {
	var i models.Inspection
	var answers string
	var classification string
	var inspector, observations, updatedAt, submittedAt, certifiedAt, plate, number sql.NullString
	err := row.Scan(&i.ID, &i.Folio, &i.VehicleID, &inspector, &answers, &i.Score, &i.MaxScore,
		&classification, &i.ClassificationID, &i.Rejected, &i.Complete, &i.Status, &observations,
		&i.SchemaVersion, &i.CreatedAt, &updatedAt, &submittedAt, &certifiedAt,
		&plate, &number)
	if err != nil {
		return i, err
	}
	if err := json.Unmarshal([]byte(answers), &i.Answers); err != nil {
		return i, fmt.Errorf("failed to decode answers of inspection %d: %w", i.ID, err)
	}
	i.Classification = scoring.Classification(classification)
	i.Inspector = inspector.String
	i.Observations = observations.String
	i.UpdatedAt = updatedAt.String
	i.SubmittedAt = submittedAt.String
	i.CertifiedAt = certifiedAt.String
	i.Plate = plate.String
	i.ConcessionNumber = number.String
	return i, nil
}

// CreateInspection inserts an inspection and fills in its ID and CreatedAt
func (r *Repository) CreateInspection(ctx context.Context, i *models.Inspection) (int64, error) {
	answers, err := json.Marshal(i.Answers)
	if err != nil {
		return 0, err
	}
	i.CreatedAt = now()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO inspections (folio, vehicle_id, inspector, answers, score, max_score, classification,
			classification_id, rejected, complete, status, observations, schema_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, i.Folio, i.VehicleID, i.Inspector, string(answers), i.Score, i.MaxScore, string(i.Classification),
		i.ClassificationID, i.Rejected, i.Complete, i.Status, i.Observations, i.SchemaVersion, i.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	i.ID = int(id)
	return id, nil
}

// GetInspection returns an inspection by ID
func (r *Repository) GetInspection(ctx context.Context, id int) (*models.Inspection, error) {
	row := r.db.QueryRowContext(ctx, inspectionSelect+` WHERE i.id = ?`, id)
	i, err := scanInspection(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetInspectionByFolio returns an inspection by its public folio
func (r *Repository) GetInspectionByFolio(ctx context.Context, folio string) (*models.Inspection, error) {
	row := r.db.QueryRowContext(ctx, inspectionSelect+` WHERE i.folio = ?`, folio)
	i, err := scanInspection(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListInspections returns inspections newest first
func (r *Repository) ListInspections(ctx context.Context, filter InspectionFilter) ([]models.Inspection, error) {
	query := inspectionSelect + ` WHERE 1 = 1`
	var args []any
	if filter.VehicleID != 0 {
		query += ` AND i.vehicle_id = ?`
		args = append(args, filter.VehicleID)
	}
	if filter.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inspections []models.Inspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, i)
	}
	return inspections, rows.Err()
}

// UpdateInspection persists answers, score fields, status and timestamps.
// UpdatedAt is refreshed on every call.
func (r *Repository) UpdateInspection(ctx context.Context, i *models.Inspection) error {
	answers, err := json.Marshal(i.Answers)
	if err != nil {
		return err
	}
	i.UpdatedAt = now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE inspections SET inspector = ?, answers = ?, score = ?, max_score = ?, classification = ?,
			classification_id = ?, rejected = ?, complete = ?, status = ?, observations = ?,
			schema_version = ?, updated_at = ?, submitted_at = ?, certified_at = ?
		WHERE id = ?
	`, i.Inspector, string(answers), i.Score, i.MaxScore, string(i.Classification),
		i.ClassificationID, i.Rejected, i.Complete, i.Status, i.Observations,
		i.SchemaVersion, i.UpdatedAt, nullIfEmpty(i.SubmittedAt), nullIfEmpty(i.CertifiedAt), i.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// CountInspectionsByClassification tallies submitted and certified inspections per classification
func (r *Repository) CountInspectionsByClassification(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT classification, COUNT(*)
		FROM inspections
		WHERE status IN ('submitted', 'certified')
		GROUP BY classification
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var classification string
		var n int
		if err := rows.Scan(&classification, &n); err != nil {
			return nil, err
		}
		counts[classification] = n
	}
	return counts, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
