package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

// --- vehicles ---

func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	query := `
		INSERT INTO vehicles (model, capacity, registration_number, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING vehicle_id, created_at`
	err := s.db.QueryRowContext(ctx, query, v.Model, v.Capacity, v.RegistrationNumber, v.OwnerID).
		Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return v, nil
}

func (s *Store) GetVehicle(ctx context.Context, id int) (models.Vehicle, error) {
	var v models.Vehicle
	err := s.db.QueryRowContext(ctx,
		`SELECT vehicle_id, model, capacity, registration_number, owner_id, created_at FROM vehicles WHERE vehicle_id = $1`, id,
	).Scan(&v.ID, &v.Model, &v.Capacity, &v.RegistrationNumber, &v.OwnerID, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vehicle{}, store.ErrNotFound
	}
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

func (s *Store) ListVehiclesByOwner(ctx context.Context, ownerID int) ([]models.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vehicle_id, model, capacity, registration_number, owner_id, created_at FROM vehicles WHERE owner_id = $1 ORDER BY vehicle_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Model, &v.Capacity, &v.RegistrationNumber, &v.OwnerID, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *Store) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE vehicles SET model = $2, capacity = $3, registration_number = $4 WHERE vehicle_id = $1`,
		v.ID, v.Model, v.Capacity, v.RegistrationNumber)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteVehicle(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE vehicle_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) VehicleHasSchedules(ctx context.Context, vehicleID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schedules WHERE vehicle_id = $1)`, vehicleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vehicle schedules: %w", err)
	}
	return exists, nil
}

// --- relations ---

func (s *Store) CreateRelation(ctx context.Context, r models.Relation) (models.Relation, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO relations (relation_name, vehicle_id) VALUES ($1, $2) RETURNING relation_id`,
		r.Name, r.VehicleID).Scan(&r.ID)
	if err != nil {
		return models.Relation{}, fmt.Errorf("failed to insert relation: %w", err)
	}
	return r, nil
}

func (s *Store) GetRelation(ctx context.Context, id int) (models.Relation, error) {
	var r models.Relation
	err := s.db.QueryRowContext(ctx,
		`SELECT relation_id, relation_name, vehicle_id FROM relations WHERE relation_id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.VehicleID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Relation{}, store.ErrNotFound
	}
	if err != nil {
		return models.Relation{}, fmt.Errorf("failed to get relation: %w", err)
	}
	return r, nil
}

func (s *Store) ListRelationsByVehicle(ctx context.Context, vehicleID int) ([]models.Relation, error) {
	return s.listRelations(ctx,
		`SELECT relation_id, relation_name, vehicle_id FROM relations WHERE vehicle_id = $1 ORDER BY relation_id`, vehicleID)
}

func (s *Store) ListRelationsByOwner(ctx context.Context, ownerID int) ([]models.Relation, error) {
	return s.listRelations(ctx, `
		SELECT r.relation_id, r.relation_name, r.vehicle_id
		FROM relations r
		JOIN vehicles v ON v.vehicle_id = r.vehicle_id
		WHERE v.owner_id = $1
		ORDER BY r.relation_id`, ownerID)
}

func (s *Store) listRelations(ctx context.Context, query string, arg any) ([]models.Relation, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()

	var relations []models.Relation
	for rows.Next() {
		var r models.Relation
		if err := rows.Scan(&r.ID, &r.Name, &r.VehicleID); err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}
	return relations, rows.Err()
}

// DeleteRelation detaches the relation's schedules, removes its price list
// and deletes the relation, all in one transaction.
func (s *Store) DeleteRelation(ctx context.Context, vehicleID, relationID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE schedules SET relation_id = NULL WHERE relation_id = $1`, relationID); err != nil {
		return fmt.Errorf("failed to detach schedules: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM price_list WHERE relation_id = $1`, relationID); err != nil {
		return fmt.Errorf("failed to delete price list: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM relations WHERE relation_id = $1 AND vehicle_id = $2`, relationID, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to delete relation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

// --- schedules ---

const scheduleColumns = `schedule_id, vehicle_id, stop, arrival_time, departure_time, order_number, relation_id, created_at`

func scanSchedule(row interface{ Scan(...any) error }) (models.Schedule, error) {
	var sc models.Schedule
	var relationID sql.NullInt64
	err := row.Scan(&sc.ID, &sc.VehicleID, &sc.Stop, &sc.ArrivalTime, &sc.DepartureTime,
		&sc.OrderNumber, &relationID, &sc.CreatedAt)
	if relationID.Valid {
		id := int(relationID.Int64)
		sc.RelationID = &id
	}
	return sc, err
}

func (s *Store) CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	query := `
		INSERT INTO schedules (vehicle_id, stop, arrival_time, departure_time, order_number, relation_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING schedule_id, created_at`
	var relationID any
	if sc.RelationID != nil {
		relationID = *sc.RelationID
	}
	err := s.db.QueryRowContext(ctx, query,
		sc.VehicleID, sc.Stop, sc.ArrivalTime, sc.DepartureTime, sc.OrderNumber, relationID,
	).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to insert schedule: %w", err)
	}
	return sc, nil
}

func (s *Store) GetSchedule(ctx context.Context, id int) (models.Schedule, error) {
	sc, err := scanSchedule(s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE schedule_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Schedule{}, store.ErrNotFound
	}
	if err != nil {
		return models.Schedule{}, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sc, nil
}

func (s *Store) ListVehicleSchedules(ctx context.Context, vehicleID int, relationID *int) ([]models.Schedule, error) {
	var rows *sql.Rows
	var err error
	if relationID != nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+scheduleColumns+` FROM schedules WHERE vehicle_id = $1 AND relation_id = $2 ORDER BY order_number`,
			vehicleID, *relationID)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+scheduleColumns+` FROM schedules WHERE vehicle_id = $1 AND relation_id IS NULL ORDER BY order_number`,
			vehicleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return collectSchedules(rows)
}

func (s *Store) ListRelationSchedules(ctx context.Context, relationID int) ([]models.Schedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE relation_id = $1 ORDER BY order_number`, relationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relation schedules: %w", err)
	}
	return collectSchedules(rows)
}

func (s *Store) ListSchedulesByStop(ctx context.Context, stop string) ([]models.Schedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE stop = $1 ORDER BY schedule_id`, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules by stop: %w", err)
	}
	return collectSchedules(rows)
}

func collectSchedules(rows *sql.Rows) ([]models.Schedule, error) {
	defer rows.Close()
	var schedules []models.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sc)
	}
	return schedules, rows.Err()
}

func (s *Store) MaxOrderNumber(ctx context.Context, vehicleID int) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_number), 0) FROM schedules WHERE vehicle_id = $1`, vehicleID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max order number: %w", err)
	}
	return max, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sc models.Schedule) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET stop = $2, arrival_time = $3, departure_time = $4 WHERE schedule_id = $1`,
		sc.ID, sc.Stop, sc.ArrivalTime, sc.DepartureTime)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateScheduleOrder(ctx context.Context, scheduleID, orderNumber int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET order_number = $2 WHERE schedule_id = $1`, scheduleID, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to update schedule order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AssignScheduleToRelation(ctx context.Context, scheduleID, relationID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET relation_id = $2 WHERE schedule_id = $1`, scheduleID, relationID)
	if err != nil {
		return fmt.Errorf("failed to assign schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSchedule(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE schedule_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRelationSchedules(ctx context.Context, relationID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE relation_id = $1`, relationID)
	if err != nil {
		return fmt.Errorf("failed to delete relation schedules: %w", err)
	}
	return nil
}

func (s *Store) DistinctStops(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT stop FROM schedules ORDER BY stop`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}
	defer rows.Close()

	var stops []string
	for rows.Next() {
		var stop string
		if err := rows.Scan(&stop); err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

// --- price lists ---

func (s *Store) UpsertPriceList(ctx context.Context, p models.PriceList) (models.PriceList, error) {
	query := `
		INSERT INTO price_list (relation_id, base_price, price_per_stop)
		VALUES ($1, $2, $3)
		ON CONFLICT (relation_id) DO UPDATE SET base_price = $2, price_per_stop = $3`
	if _, err := s.db.ExecContext(ctx, query, p.RelationID, p.BasePrice, p.PricePerStop); err != nil {
		return models.PriceList{}, fmt.Errorf("failed to upsert price list: %w", err)
	}
	return p, nil
}

func (s *Store) GetPriceList(ctx context.Context, relationID int) (models.PriceList, error) {
	var p models.PriceList
	err := s.db.QueryRowContext(ctx,
		`SELECT relation_id, base_price, price_per_stop FROM price_list WHERE relation_id = $1`, relationID,
	).Scan(&p.RelationID, &p.BasePrice, &p.PricePerStop)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PriceList{}, store.ErrNotFound
	}
	if err != nil {
		return models.PriceList{}, fmt.Errorf("failed to get price list: %w", err)
	}
	return p, nil
}
