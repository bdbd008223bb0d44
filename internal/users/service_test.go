package users

import (
	"context"
	"errors"
	"testing"

	"github.com/eyss21/projekt/internal/models"
	"github.com/eyss21/projekt/internal/store"
)

// plainHasher avoids argon2 cost in unit tests.
type plainHasher struct{}

func (plainHasher) HashPassword(ctx context.Context, password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error) {
	return encodedHash == "hashed:"+password, nil
}

type fakeUserStore struct {
	users   map[int]models.User
	wallets map[int]models.Wallet
	nextID  int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int]models.User{}, wallets: map[int]models.Wallet{}, nextID: 1}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	f.wallets[user.ID] = models.Wallet{ID: user.ID, UserID: user.ID}
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string, userType models.UserType) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.UserType == userType {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) ListUsers(ctx context.Context) ([]models.User, error) { return nil, nil }

func (f *fakeUserStore) UpdateUser(ctx context.Context, user models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) DeleteUser(ctx context.Context, id int) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	delete(f.wallets, id)
	return nil
}

func (f *fakeUserStore) GetWallet(ctx context.Context, userID int) (models.Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok {
		return models.Wallet{}, store.ErrNotFound
	}
	return w, nil
}

func (f *fakeUserStore) SetWalletBalance(ctx context.Context, userID int, balance float64) (models.Wallet, error) {
	w, ok := f.wallets[userID]
	if !ok {
		return models.Wallet{}, store.ErrNotFound
	}
	w.Balance = balance
	f.wallets[userID] = w
	return w, nil
}

type fakeDriverStore struct {
	drivers map[int]models.Driver
	nextID  int
}

func newFakeDriverStore() *fakeDriverStore {
	return &fakeDriverStore{drivers: map[int]models.Driver{}, nextID: 1}
}

func (f *fakeDriverStore) CreateDriver(ctx context.Context, driver models.Driver) (models.Driver, error) {
	driver.ID = f.nextID
	f.nextID++
	f.drivers[driver.ID] = driver
	return driver, nil
}

func (f *fakeDriverStore) GetDriver(ctx context.Context, id int) (models.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return models.Driver{}, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeDriverStore) GetDriverByCode(ctx context.Context, idCode string) (models.Driver, error) {
	for _, d := range f.drivers {
		if d.IDCode == idCode {
			return d, nil
		}
	}
	return models.Driver{}, store.ErrNotFound
}

func (f *fakeDriverStore) ListDriversByOwner(ctx context.Context, ownerID int) ([]models.Driver, error) {
	return nil, nil
}

func (f *fakeDriverStore) UpdateDriverPIN(ctx context.Context, id int, pin string) error {
	d, ok := f.drivers[id]
	if !ok {
		return store.ErrNotFound
	}
	d.PINCode = pin
	f.drivers[id] = d
	return nil
}

func (f *fakeDriverStore) DeleteDriver(ctx context.Context, id int) error {
	if _, ok := f.drivers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.drivers, id)
	return nil
}

func (f *fakeDriverStore) DriverCodeExists(ctx context.Context, idCode string) (bool, error) {
	for _, d := range f.drivers {
		if d.IDCode == idCode {
			return true, nil
		}
	}
	return false, nil
}

func newTestService() (*Service, *fakeUserStore, *fakeDriverStore) {
	us := newFakeUserStore()
	ds := newFakeDriverStore()
	return NewService(us, ds, plainHasher{}), us, ds
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email: "jan@example.com", Password: "secret",
		FirstName: "Jan", LastName: "Kowalski", City: "Gdansk",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, us, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, models.UserTypeCustomer, registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash == "secret" {
		t.Error("password stored in plain text")
	}
	if _, ok := us.wallets[user.ID]; !ok {
		t.Error("registration must create a wallet")
	}

	logged, err := svc.Login(ctx, models.UserTypeCustomer, "jan@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as %d, want %d", logged.ID, user.ID)
	}
}

func TestLogin_FlattensFailures(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, models.UserTypeCustomer, registerInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unknown account and wrong password must be indistinguishable.
	_, errUnknown := svc.Login(ctx, models.UserTypeCustomer, "nobody@example.com", "secret")
	_, errWrongPass := svc.Login(ctx, models.UserTypeCustomer, "jan@example.com", "wrong")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Errorf("errors = %v / %v, both must be ErrInvalidCredentials", errUnknown, errWrongPass)
	}

	// Same email, different role: roles keep separate namespaces.
	if _, err := svc.Login(ctx, models.UserTypeCarrier, "jan@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials across roles", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, models.UserTypeCustomer, registerInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(ctx, models.UserTypeCustomer, registerInput()); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("error = %v, want ErrEmailTaken", err)
	}
	// The same email may register under a different role.
	if _, err := svc.Register(ctx, models.UserTypeCarrier, registerInput()); err != nil {
		t.Errorf("unexpected error registering another role: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	user, err := svc.Register(ctx, models.UserTypeCustomer, registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "next"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret", "next"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login(ctx, models.UserTypeCustomer, "jan@example.com", "next"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestDriverLifecycle(t *testing.T) {
	svc, _, ds := newTestService()
	ctx := context.Background()

	driver, err := svc.CreateDriver(ctx, 7, "Piotr", "Nowak", "1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(driver.IDCode) != 9 {
		t.Errorf("id code %q, want 9 digits", driver.IDCode)
	}
	if ds.drivers[driver.ID].PINCode == "1234" {
		t.Error("PIN stored in plain text")
	}

	logged, err := svc.DriverLogin(ctx, driver.IDCode, "1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logged.ID != driver.ID {
		t.Errorf("logged in as %d, want %d", logged.ID, driver.ID)
	}
	if _, err := svc.DriverLogin(ctx, driver.IDCode, "0000"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}

	if err := svc.ChangeDriverPIN(ctx, driver.ID, "5678"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.DriverLogin(ctx, driver.IDCode, "5678"); err != nil {
		t.Errorf("login with new PIN failed: %v", err)
	}
}

func TestSetWalletBalance(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	user, err := svc.Register(ctx, models.UserTypeCustomer, registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wallet, err := svc.SetWalletBalance(ctx, user.ID, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 150 {
		t.Errorf("balance = %v, want 150", wallet.Balance)
	}
	if _, err := svc.SetWalletBalance(ctx, 999, 10); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}
