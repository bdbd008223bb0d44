package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

const userColumns = `user_id, email, password, COALESCE(phone_number, ''), COALESCE(company_name, ''),
	COALESCE(postal_code, ''), COALESCE(city, ''), COALESCE(street, ''),
	COALESCE(first_name, ''), COALESCE(last_name, ''), user_type, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.CompanyName,
		&u.PostalCode, &u.City, &u.Street, &u.FirstName, &u.LastName, &u.UserType, &u.CreatedAt)
	return u, err
}

// CreateUser inserts the account and an empty wallet in one transaction.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (email, password, phone_number, company_name, postal_code, city, street, first_name, last_name, user_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING user_id, created_at`
	err = tx.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.PhoneNumber, user.CompanyName,
		user.PostalCode, user.City, user.Street, user.FirstName, user.LastName, user.UserType,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (user_id, balance) VALUES ($1, 0)`, user.ID); err != nil {
		return models.User{}, fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("failed to commit: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string, userType models.UserType) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND user_type = $2`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, email, userType))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY user_id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	query := `
		UPDATE users
		SET email = $2, password = $3, phone_number = $4, company_name = $5, postal_code = $6,
		    city = $7, street = $8, first_name = $9, last_name = $10, user_type = $11
		WHERE user_id = $1`
	res, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.PhoneNumber, user.CompanyName,
		user.PostalCode, user.City, user.Street, user.FirstName, user.LastName, user.UserType)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteUser removes the account and everything hanging off it: fleet data
// for carriers, orders, wallet, drivers and reported problems.
func (s *Store) DeleteUser(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM order_status_history WHERE order_id IN (
			SELECT order_id FROM orders WHERE user_id = $1
			OR relation_id IN (SELECT relation_id FROM relations WHERE vehicle_id IN
				(SELECT vehicle_id FROM vehicles WHERE owner_id = $1)))`,
		`DELETE FROM shipment_problems WHERE user_id = $1 OR order_id IN (
			SELECT order_id FROM orders WHERE user_id = $1)`,
		`DELETE FROM orders WHERE user_id = $1
			OR relation_id IN (SELECT relation_id FROM relations WHERE vehicle_id IN
				(SELECT vehicle_id FROM vehicles WHERE owner_id = $1))`,
		`DELETE FROM price_list WHERE relation_id IN (
			SELECT relation_id FROM relations WHERE vehicle_id IN
				(SELECT vehicle_id FROM vehicles WHERE owner_id = $1))`,
		`DELETE FROM schedules WHERE vehicle_id IN (SELECT vehicle_id FROM vehicles WHERE owner_id = $1)`,
		`DELETE FROM relations WHERE vehicle_id IN (SELECT vehicle_id FROM vehicles WHERE owner_id = $1)`,
		`DELETE FROM vehicles WHERE owner_id = $1`,
		`DELETE FROM drivers WHERE owner_id = $1`,
		`DELETE FROM wallets WHERE user_id = $1`,
	}
	for _, q := range statements {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete user data: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) GetWallet(ctx context.Context, userID int) (models.Wallet, error) {
	var w models.Wallet
	err := s.db.QueryRowContext(ctx,
		`SELECT wallet_id, user_id, balance FROM wallets WHERE user_id = $1`, userID,
	).Scan(&w.ID, &w.UserID, &w.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, store.ErrNotFound
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// SetWalletBalance overwrites the balance (admin wallet management).
func (s *Store) SetWalletBalance(ctx context.Context, userID int, balance float64) (models.Wallet, error) {
	var w models.Wallet
	err := s.db.QueryRowContext(ctx,
		`UPDATE wallets SET balance = $2 WHERE user_id = $1 RETURNING wallet_id, user_id, balance`,
		userID, balance,
	).Scan(&w.ID, &w.UserID, &w.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, store.ErrNotFound
	}
	if err != nil {
		return models.Wallet{}, fmt.Errorf("failed to update wallet: %w", err)
	}
	return w, nil
}

// --- drivers ---

func (s *Store) CreateDriver(ctx context.Context, driver models.Driver) (models.Driver, error) {
	query := `
		INSERT INTO drivers (first_name, last_name, driver_id_code, pin_code, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING driver_id`
	err := s.db.QueryRowContext(ctx, query,
		driver.FirstName, driver.LastName, driver.IDCode, driver.PINCode, driver.OwnerID,
	).Scan(&driver.ID)
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to insert driver: %w", err)
	}
	return driver, nil
}

func (s *Store) GetDriver(ctx context.Context, id int) (models.Driver, error) {
	var d models.Driver
	err := s.db.QueryRowContext(ctx,
		`SELECT driver_id, first_name, last_name, driver_id_code, pin_code, owner_id FROM drivers WHERE driver_id = $1`, id,
	).Scan(&d.ID, &d.FirstName, &d.LastName, &d.IDCode, &d.PINCode, &d.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Driver{}, store.ErrNotFound
	}
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to get driver: %w", err)
	}
	return d, nil
}

func (s *Store) GetDriverByCode(ctx context.Context, idCode string) (models.Driver, error) {
	var d models.Driver
	err := s.db.QueryRowContext(ctx,
		`SELECT driver_id, first_name, last_name, driver_id_code, pin_code, owner_id FROM drivers WHERE driver_id_code = $1`, idCode,
	).Scan(&d.ID, &d.FirstName, &d.LastName, &d.IDCode, &d.PINCode, &d.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Driver{}, store.ErrNotFound
	}
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to get driver: %w", err)
	}
	return d, nil
}

func (s *Store) ListDriversByOwner(ctx context.Context, ownerID int) ([]models.Driver, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT driver_id, first_name, last_name, driver_id_code, pin_code, owner_id FROM drivers WHERE owner_id = $1 ORDER BY driver_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &d.IDCode, &d.PINCode, &d.OwnerID); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (s *Store) UpdateDriverPIN(ctx context.Context, id int, pin string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE drivers SET pin_code = $2 WHERE driver_id = $1`, id, pin)
	if err != nil {
		return fmt.Errorf("failed to update driver pin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDriver(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drivers WHERE driver_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DriverCodeExists(ctx context.Context, idCode string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM drivers WHERE driver_id_code = $1)`, idCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check driver code: %w", err)
	}
	return exists, nil
}
