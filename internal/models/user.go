package models

import "time"

// UserType distinguishes the three account kinds that share the users table.
// Drivers are a separate entity owned by a carrier, see Driver.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeCarrier  UserType = "carrier"
	UserTypeAdmin    UserType = "admin"
)

// User is a platform account. Customer accounts fill the name fields,
// carrier accounts fill the company/address fields.
type User struct {
	ID           int
	Email        string
	PasswordHash string
	PhoneNumber  string
	CompanyName  string
	PostalCode   string
	City         string
	Street       string
	FirstName    string
	LastName     string
	UserType     UserType
	CreatedAt    time.Time
}

// Wallet holds the prepaid balance used to pay for shipments. Customers are
// debited on booking, carriers are credited on delivery.
type Wallet struct {
	ID      int
	UserID  int
	Balance float64
}

// Driver belongs to a carrier and logs in with a generated 9-digit id code
// plus a PIN instead of an email/password pair.
type Driver struct {
	ID        int
	FirstName string
	LastName  string
	IDCode    string
	PINCode   string
	OwnerID   int
}
