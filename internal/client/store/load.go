package store

import (
	"context"
	"sync"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LoadReport is the per-collection outcome of LoadAll. A nil field means the
// collection was replaced with fresh data; on error the previous contents
// are kept.
type LoadReport struct {
	Users       error
	Apartments  error
	Payments    error
	Maintenance error
	// UsersFlat is set when the joined users fetch failed and the flat
	// documents were loaded instead.
	UsersFlat bool
}

// Err combines the collection errors.
func (r *LoadReport) Err() error {
	return multierr.Combine(r.Users, r.Apartments, r.Payments, r.Maintenance)
}

// Failed returns the number of collections that could not be loaded.
func (r *LoadReport) Failed() int {
	n := 0
	for _, err := range []error{r.Users, r.Apartments, r.Payments, r.Maintenance} {
		if err != nil {
			n++
		}
	}
	return n
}

// LoadAll fetches the four collections in parallel and replaces the ones
// that loaded. The store error is set when all four fail and cleared
// otherwise; that error is also returned.
//
// At most one LoadAll runs at a time. A call made while another is running
// returns nil, nil without fetching.
func (s *Store) LoadAll(ctx context.Context) (*LoadReport, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return nil, nil
	}
	done := s.begin()
	s.stale.Store(false)
	rep, err := s.loadOnce(ctx)
	s.loading.Store(false)
	done()

	if s.stale.CompareAndSwap(true, false) {
		if again, againErr := s.LoadAll(ctx); again != nil {
			return again, againErr
		}
	}
	return rep, err
}

func (s *Store) loadOnce(ctx context.Context) (*LoadReport, error) {
	var (
		rep         LoadReport
		users       []models.UserWithApartment
		apartments  []models.ApartmentWithTenant
		payments    []models.Payment
		maintenance []models.MaintenanceRequest
		wg          sync.WaitGroup
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		users, rep.UsersFlat, rep.Users = s.fetchUsers(ctx)
	}()
	go func() {
		defer wg.Done()
		apartments, rep.Apartments = s.backend.ListApartments(ctx)
	}()
	go func() {
		defer wg.Done()
		payments, rep.Payments = s.backend.ListPayments(ctx)
	}()
	go func() {
		defer wg.Done()
		maintenance, rep.Maintenance = s.backend.ListMaintenance(ctx)
	}()
	wg.Wait()

	var storeErr error
	if rep.Failed() == 4 {
		storeErr = &apperr.Error{Code: apperr.Unavailable, Message: LoadFailedMessage, Err: rep.Err()}
	}

	s.mu.Lock()
	if rep.Users == nil {
		s.users = nonNil(users)
	}
	if rep.Apartments == nil {
		s.apartments = nonNil(apartments)
	}
	if rep.Payments == nil {
		s.payments = nonNil(payments)
	}
	if rep.Maintenance == nil {
		s.maintenance = nonNil(maintenance)
	}
	s.err = storeErr
	s.mu.Unlock()

	switch {
	case storeErr != nil:
		s.log.Error("load failed", zap.Error(rep.Err()))
	case rep.Failed() > 0:
		s.log.Warn("partial load", zap.Int("failed", rep.Failed()), zap.Error(rep.Err()))
	}
	return &rep, storeErr
}

// fetchUsers loads the joined users, falling back to the flat documents.
func (s *Store) fetchUsers(ctx context.Context) ([]models.UserWithApartment, bool, error) {
	joined, err := s.backend.ListUsers(ctx)
	if err == nil {
		return joined, false, nil
	}
	s.log.Warn("joined users fetch failed, loading flat users", zap.Error(err))
	flat, flatErr := s.backend.ListUsersFlat(ctx)
	if flatErr != nil {
		return nil, false, multierr.Append(err, flatErr)
	}
	out := make([]models.UserWithApartment, len(flat))
	for i, u := range flat {
		out[i] = models.UserWithApartment{User: u}
	}
	return out, true, nil
}

// Refresh reloads every collection.
func (s *Store) Refresh(ctx context.Context) (*LoadReport, error) {
	return s.LoadAll(ctx)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
