package graph

//go:generate go run github.com/99designs/gqlgen generate

import (
	"github.com/eyss21/projekt/internal/catalog"
	"github.com/eyss21/projekt/internal/courses"
	"github.com/eyss21/projekt/internal/fleet"
	"github.com/eyss21/projekt/internal/orders"
	"github.com/eyss21/projekt/internal/quote"
	"github.com/eyss21/projekt/internal/users"
)

// Resolver is the dependency injection container for the resolvers.
// Booker is the booking submission backend: the orders service directly, or
// the Temporal submitter when a workflow host is configured.
type Resolver struct {
	Users   *users.Service
	Fleet   *fleet.Service
	Catalog *catalog.Service
	Courses *courses.Service
	Orders  *orders.Service
	Booker  quote.OrderCreator
}

func NewResolver(
	usersSvc *users.Service,
	fleetSvc *fleet.Service,
	catalogSvc *catalog.Service,
	coursesSvc *courses.Service,
	ordersSvc *orders.Service,
	booker quote.OrderCreator,
) *Resolver {
	return &Resolver{
		Users:   usersSvc,
		Fleet:   fleetSvc,
		Catalog: catalogSvc,
		Courses: coursesSvc,
		Orders:  ordersSvc,
		Booker:  booker,
	}
}
