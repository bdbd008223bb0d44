// Package users handles accounts for customers, carriers and administrators,
// their wallets, and the carrier's drivers.
package users

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/eyss21/projekt/internal/crypto"
	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

// Login failures are flattened into one error so callers cannot tell a
// missing account from a bad password.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

const driverCodeLength = 9

// Service implements account, wallet and driver management.
type Service struct {
	users   store.UserStore
	drivers store.DriverStore
	hasher  crypto.PasswordHasher
}

func NewService(users store.UserStore, drivers store.DriverStore, hasher crypto.PasswordHasher) *Service {
	return &Service{users: users, drivers: drivers, hasher: hasher}
}

// RegisterInput is the common registration payload; carrier-only fields stay
// empty for customers.
type RegisterInput struct {
	Email       string
	Password    string
	PhoneNumber string
	CompanyName string
	PostalCode  string
	City        string
	Street      string
	FirstName   string
	LastName    string
}

// Register creates an account of the given type with a hashed password and
// an empty wallet.
func (s *Service) Register(ctx context.Context, userType models.UserType, in RegisterInput) (models.User, error) {
	if _, err := s.users.GetUserByEmail(ctx, in.Email, userType); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := s.hasher.HashPassword(ctx, in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		CompanyName:  in.CompanyName,
		PostalCode:   in.PostalCode,
		City:         in.City,
		Street:       in.Street,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		UserType:     userType,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies the password of an account of the given type.
func (s *Service) Login(ctx context.Context, userType models.UserType, email, password string) (models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email, userType)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := s.hasher.VerifyPassword(ctx, password, user.PasswordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int) (models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateProfile rewrites the profile fields, keeping email, password and
// type as they are.
func (s *Service) UpdateProfile(ctx context.Context, id int, in RegisterInput) (models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	user.PhoneNumber = in.PhoneNumber
	user.CompanyName = in.CompanyName
	user.PostalCode = in.PostalCode
	user.City = in.City
	user.Street = in.Street
	user.FirstName = in.FirstName
	user.LastName = in.LastName

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, id int, current, updated string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.VerifyPassword(ctx, current, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.HashPassword(ctx, updated)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.users.UpdateUser(ctx, user)
}

// DeleteUser removes the account with everything hanging off it.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	err := s.users.DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) GetWallet(ctx context.Context, userID int) (models.Wallet, error) {
	wallet, err := s.users.GetWallet(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Wallet{}, ErrUserNotFound
	}
	return wallet, err
}

// SetWalletBalance is the admin wallet override, also used to simulate
// top-ups in development.
func (s *Service) SetWalletBalance(ctx context.Context, userID int, balance float64) (models.Wallet, error) {
	wallet, err := s.users.SetWalletBalance(ctx, userID, balance)
	if errors.Is(err, store.ErrNotFound) {
		return models.Wallet{}, ErrUserNotFound
	}
	return wallet, err
}

// --- drivers ---

// CreateDriver registers a carrier's driver with a generated unique 9-digit
// id code and a hashed PIN.
func (s *Service) CreateDriver(ctx context.Context, ownerID int, firstName, lastName, pin string) (models.Driver, error) {
	idCode, err := s.uniqueDriverCode(ctx)
	if err != nil {
		return models.Driver{}, err
	}

	pinHash, err := s.hasher.HashPassword(ctx, pin)
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to hash pin: %w", err)
	}

	driver, err := s.drivers.CreateDriver(ctx, models.Driver{
		FirstName: firstName,
		LastName:  lastName,
		IDCode:    idCode,
		PINCode:   pinHash,
		OwnerID:   ownerID,
	})
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to create driver: %w", err)
	}
	return driver, nil
}

// DriverLogin verifies a driver by id code and PIN.
func (s *Service) DriverLogin(ctx context.Context, idCode, pin string) (models.Driver, error) {
	driver, err := s.drivers.GetDriverByCode(ctx, idCode)
	if errors.Is(err, store.ErrNotFound) {
		return models.Driver{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Driver{}, err
	}

	ok, err := s.hasher.VerifyPassword(ctx, pin, driver.PINCode)
	if err != nil || !ok {
		return models.Driver{}, ErrInvalidCredentials
	}
	return driver, nil
}

func (s *Service) ListDrivers(ctx context.Context, ownerID int) ([]models.Driver, error) {
	return s.drivers.ListDriversByOwner(ctx, ownerID)
}

// ChangeDriverPIN lets the owning carrier reset a driver's PIN.
func (s *Service) ChangeDriverPIN(ctx context.Context, driverID int, pin string) error {
	pinHash, err := s.hasher.HashPassword(ctx, pin)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	err = s.drivers.UpdateDriverPIN(ctx, driverID, pinHash)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) DeleteDriver(ctx context.Context, driverID int) error {
	err := s.drivers.DeleteDriver(ctx, driverID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) uniqueDriverCode(ctx context.Context) (string, error) {
	for {
		code, err := randomDigits(driverCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.drivers.DriverCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check driver code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}

func randomDigits(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("crypto/rand failed: %w", err)
	}
	digits := make([]byte, n)
	for i, b := range raw {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}
