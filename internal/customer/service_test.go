package customer

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

type stubStore struct {
	created    []store.Customer
	createErr  error
	byExternal map[string]store.Customer
	byID       map[int64]store.Customer
}

func newStubStore() *stubStore {
	return &stubStore{
		byExternal: map[string]store.Customer{},
		byID:       map[int64]store.Customer{},
	}
}

func (s *stubStore) CreateCustomer(ctx context.Context, externalID, name string, phone, email *string) (store.Customer, error) {
	if s.createErr != nil {
		return store.Customer{}, s.createErr
	}
	c := store.Customer{ID: int64(len(s.created) + 1), CustomerID: externalID, Name: name, Phone: phone, Email: email}
	s.created = append(s.created, c)
	return c, nil
}

func (s *stubStore) GetCustomerByID(ctx context.Context, id int64) (store.Customer, error) {
	c, ok := s.byID[id]
	if !ok {
		return store.Customer{}, store.ErrNoRows
	}
	return c, nil
}

func (s *stubStore) GetCustomerByExternalID(ctx context.Context, externalID string) (store.Customer, error) {
	c, ok := s.byExternal[externalID]
	if !ok {
		return store.Customer{}, store.ErrNoRows
	}
	return c, nil
}

func (s *stubStore) ListCustomers(ctx context.Context, limit, offset int32) ([]store.Customer, error) {
	return s.created, nil
}

func (s *stubStore) CountCustomers(ctx context.Context) (int64, error) {
	return int64(len(s.created)), nil
}

func (s *stubStore) UpdateCustomerContact(ctx context.Context, id int64, phone, email *string) (store.Customer, error) {
	c, ok := s.byID[id]
	if !ok {
		return store.Customer{}, store.ErrNoRows
	}
	if phone != nil {
		c.Phone = phone
	}
	if email != nil {
		c.Email = email
	}
	s.byID[id] = c
	return c, nil
}

func TestRegisterGeneratesExternalID(t *testing.T) {
	st := newStubStore()
	svc := &Service{Store: st}

	c, err := svc.Register(context.Background(), RegisterInput{Name: "Budi"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(c.CustomerID, "C-"))
	require.Len(t, c.CustomerID, 10)
}

func TestRegisterKeepsProvidedExternalID(t *testing.T) {
	st := newStubStore()
	svc := &Service{Store: st}

	c, err := svc.Register(context.Background(), RegisterInput{CustomerID: "MEMBER-42", Name: "Sari"})
	require.NoError(t, err)
	require.Equal(t, "MEMBER-42", c.CustomerID)
}

func TestRegisterRequiresName(t *testing.T) {
	svc := &Service{Store: newStubStore()}

	_, err := svc.Register(context.Background(), RegisterInput{Name: "   "})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestRegisterDuplicateExternalID(t *testing.T) {
	st := newStubStore()
	st.createErr = &pgconn.PgError{Code: "23505"}
	svc := &Service{Store: st}

	_, err := svc.Register(context.Background(), RegisterInput{CustomerID: "MEMBER-42", Name: "Sari"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeConflict, appErr.Code)
}

func TestSearchNotFound(t *testing.T) {
	svc := &Service{Store: newStubStore()}

	_, err := svc.Search(context.Background(), "MEMBER-404")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestUpdateContactRequiresField(t *testing.T) {
	svc := &Service{Store: newStubStore()}

	_, err := svc.UpdateContact(context.Background(), 1, nil, nil)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestUpdateContactPartial(t *testing.T) {
	st := newStubStore()
	phone := "08123456789"
	email := "budi@example.com"
	st.byID[1] = store.Customer{ID: 1, CustomerID: "C-AB12CD34", Name: "Budi", Email: &email}
	svc := &Service{Store: st}

	c, err := svc.UpdateContact(context.Background(), 1, &phone, nil)
	require.NoError(t, err)
	require.Equal(t, phone, *c.Phone)
	require.Equal(t, email, *c.Email)
}
