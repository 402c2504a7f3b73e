package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Store defines the database operations required for customer management.
type Store interface {
	CreateCustomer(ctx context.Context, externalID, name string, phone, email *string) (store.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (store.Customer, error)
	GetCustomerByExternalID(ctx context.Context, externalID string) (store.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int32) ([]store.Customer, error)
	CountCustomers(ctx context.Context) (int64, error)
	UpdateCustomerContact(ctx context.Context, id int64, phone, email *string) (store.Customer, error)
}

// Service orchestrates customer registration and lookup.
type Service struct {
	Store    Store
	Activity activity.Recorder
}

// RegisterInput captures the payload for registering a customer.
type RegisterInput struct {
	CustomerID string
	Name       string
	Phone      *string
	Email      *string
}

// Register creates a customer. When no external id is supplied one is
// generated in the form C-<8 hex>.
func (s *Service) Register(ctx context.Context, input RegisterInput) (store.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return store.Customer{}, common.Validation("name is required")
	}
	externalID := strings.TrimSpace(input.CustomerID)
	if externalID == "" {
		externalID = generateCustomerID()
	}

	c, err := s.Store.CreateCustomer(ctx, externalID, name, input.Phone, input.Email)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return store.Customer{}, common.Conflict(fmt.Sprintf("customer id %q already registered", externalID))
		}
		return store.Customer{}, err
	}

	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindCustomerCreated,
		CustomerID:  &c.ID,
		Description: fmt.Sprintf("customer %s (%s) registered", c.Name, c.CustomerID),
	})
	return c, nil
}

// Get fetches a customer by primary key.
func (s *Service) Get(ctx context.Context, id int64) (store.Customer, error) {
	c, err := s.Store.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Customer{}, common.NotFound("customer not found")
		}
		return store.Customer{}, err
	}
	return c, nil
}

// Search looks up a customer by its external identifier.
func (s *Service) Search(ctx context.Context, externalID string) (store.Customer, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return store.Customer{}, common.Validation("customer_id is required")
	}
	c, err := s.Store.GetCustomerByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Customer{}, common.NotFound("customer not found")
		}
		return store.Customer{}, err
	}
	return c, nil
}

// List returns customers newest first along with the total count.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]store.Customer, int64, error) {
	customers, err := s.Store.ListCustomers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountCustomers(ctx)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// UpdateContact patches the mutable contact fields of a customer.
func (s *Service) UpdateContact(ctx context.Context, id int64, phone, email *string) (store.Customer, error) {
	if phone == nil && email == nil {
		return store.Customer{}, common.Validation("at least one of phone or email is required")
	}
	c, err := s.Store.UpdateCustomerContact(ctx, id, phone, email)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Customer{}, common.NotFound("customer not found")
		}
		return store.Customer{}, err
	}
	return c, nil
}

func generateCustomerID() string {
	id := uuid.New()
	return "C-" + strings.ToUpper(id.String()[:8])
}
