package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

const orderColumns = `order_id, user_id, relation_id, driver_id, status, size, start_stop, end_stop,
	departure_time, arrival_time, price, created_at, order_code,
	COALESCE(pickup_code, ''), COALESCE(delivery_code, ''), deleted_by_user, deleted_by_carrier`

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	var driverID sql.NullInt64
	err := row.Scan(&o.ID, &o.UserID, &o.RelationID, &driverID, &o.Status, &o.Size,
		&o.StartStop, &o.EndStop, &o.DepartureTime, &o.ArrivalTime, &o.Price, &o.CreatedAt,
		&o.OrderCode, &o.PickupCode, &o.DeliveryCode, &o.DeletedByUser, &o.DeletedByCarrier)
	if driverID.Valid {
		id := int(driverID.Int64)
		o.DriverID = &id
	}
	return o, err
}

// CreateOrderPaid inserts the order, writes the first history row and debits
// the customer wallet, all in one transaction. The wallet row is locked so a
// concurrent booking cannot spend the same balance twice.
func (s *Store) CreateOrderPaid(ctx context.Context, order models.Order) (models.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var balance float64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, order.UserID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, store.ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if balance < order.Price {
		return models.Order{}, store.ErrInsufficientFunds
	}

	query := `
		INSERT INTO orders (user_id, relation_id, status, size, start_stop, end_stop,
			departure_time, arrival_time, price, order_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING order_id, created_at`
	err = tx.QueryRowContext(ctx, query,
		order.UserID, order.RelationID, order.Status, order.Size, order.StartStop, order.EndStop,
		order.DepartureTime, order.ArrivalTime, order.Price, order.OrderCode,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, status) VALUES ($1, $2)`,
		order.ID, order.Status); err != nil {
		return models.Order{}, fmt.Errorf("failed to insert status history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = balance - $2 WHERE user_id = $1`,
		order.UserID, order.Price); err != nil {
		return models.Order{}, fmt.Errorf("failed to debit wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, fmt.Errorf("failed to commit: %w", err)
	}
	return order, nil
}

func (s *Store) GetOrder(ctx context.Context, id int) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, store.ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrderByCode(ctx context.Context, orderCode string) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_code = $1`, orderCode))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, store.ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order by code: %w", err)
	}
	return o, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	return s.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND NOT deleted_by_user ORDER BY created_at DESC`,
		userID)
}

func (s *Store) ListOrdersByCarrier(ctx context.Context, ownerID int) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE relation_id IN (
			SELECT r.relation_id FROM relations r
			JOIN vehicles v ON v.vehicle_id = r.vehicle_id
			WHERE v.owner_id = $1)
		AND NOT deleted_by_carrier
		ORDER BY created_at DESC`, ownerID)
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *Store) ListActiveOrdersForRelationOn(ctx context.Context, relationID int, day time.Time) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE relation_id = $1 AND DATE(departure_time) = DATE($2) AND status = ANY($3)
		ORDER BY order_id`,
		relationID, day, pq.Array(statusStrings(models.ActiveStatuses)))
}

func (s *Store) ListOrdersByDriver(ctx context.Context, driverID int, statuses []models.OrderStatus) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE driver_id = $1 AND status = ANY($2)
		ORDER BY departure_time`,
		driverID, pq.Array(statusStrings(statuses)))
}

func statusStrings(statuses []models.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func (s *Store) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) OrderCodeExists(ctx context.Context, orderCode string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE order_code = $1)`, orderCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order code: %w", err)
	}
	return exists, nil
}

// UpdateStatus sets the status and appends the history row in one transaction.
func (s *Store) UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := setStatusTx(ctx, tx, orderID, status); err != nil {
		return err
	}
	return tx.Commit()
}

func setStatusTx(ctx context.Context, tx *sql.Tx, orderID int, status models.OrderStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE order_id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, status) VALUES ($1, $2)`, orderID, status); err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}
	return nil
}

// AssignDriver sets the driver and the handover codes together with the
// Driver assigned status transition.
func (s *Store) AssignDriver(ctx context.Context, orderID, driverID int, pickupCode, deliveryCode string) (models.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET driver_id = $2, pickup_code = $3, delivery_code = $4 WHERE order_id = $1`,
		orderID, driverID, pickupCode, deliveryCode)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to assign driver: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Order{}, store.ErrNotFound
	}
	if err := setStatusTx(ctx, tx, orderID, models.OrderStatusDriverAssigned); err != nil {
		return models.Order{}, err
	}

	o, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID))
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to reload order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Order{}, fmt.Errorf("failed to commit: %w", err)
	}
	return o, nil
}

// MarkDelivered finishes the order and credits the carrier wallet with the
// order price. The carrier is found through the relation's vehicle owner.
func (s *Store) MarkDelivered(ctx context.Context, orderID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := setStatusTx(ctx, tx, orderID, models.OrderStatusDelivered); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance + o.price
		FROM orders o
		JOIN relations r ON r.relation_id = o.relation_id
		JOIN vehicles v ON v.vehicle_id = r.vehicle_id
		WHERE o.order_id = $1 AND wallets.user_id = v.owner_id`, orderID)
	if err != nil {
		return fmt.Errorf("failed to credit carrier wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to credit carrier wallet: %w", store.ErrNotFound)
	}
	return tx.Commit()
}

func (s *Store) ListStatusHistory(ctx context.Context, orderID int) ([]models.OrderStatusChange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT history_id, order_id, status, changed_at FROM order_status_history WHERE order_id = $1 ORDER BY changed_at, history_id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderStatusChange
	for rows.Next() {
		var c models.OrderStatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.Status, &c.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, c)
	}
	return history, rows.Err()
}

// SetDeletedByUser hides the order from the customer's list. The row stays so
// the carrier side and the history survive.
func (s *Store) SetDeletedByUser(ctx context.Context, orderID, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET deleted_by_user = TRUE WHERE order_id = $1 AND user_id = $2`, orderID, userID)
	if err != nil {
		return fmt.Errorf("failed to hide order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetDeletedByCarrier(ctx context.Context, orderID, ownerID int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET deleted_by_carrier = TRUE
		WHERE order_id = $1 AND relation_id IN (
			SELECT r.relation_id FROM relations r
			JOIN vehicles v ON v.vehicle_id = r.vehicle_id
			WHERE v.owner_id = $2)`, orderID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to hide order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- shipment problems ---

func (s *Store) CreateProblem(ctx context.Context, p models.ShipmentProblem) (models.ShipmentProblem, error) {
	query := `
		INSERT INTO shipment_problems (order_id, user_id, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING problem_id, created_at`
	err := s.db.QueryRowContext(ctx, query, p.OrderID, p.UserID, p.Description, p.Status).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.ShipmentProblem{}, fmt.Errorf("failed to insert problem: %w", err)
	}
	return p, nil
}

func (s *Store) DeleteProblem(ctx context.Context, problemID int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shipment_problems WHERE problem_id = $1`, problemID)
	if err != nil {
		return fmt.Errorf("failed to delete problem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListProblemsByUser(ctx context.Context, userID int) ([]models.ShipmentProblem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT problem_id, order_id, user_id, description, status, created_at FROM shipment_problems WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	defer rows.Close()

	var problems []models.ShipmentProblem
	for rows.Next() {
		var p models.ShipmentProblem
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Description, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

func (s *Store) ListInterventionOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1
		ORDER BY created_at DESC`, models.OrderStatusIntervention)
}

func (s *Store) DeleteOrderWithHistory(ctx context.Context, orderID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM order_status_history WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shipment_problems WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to delete problems: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}
