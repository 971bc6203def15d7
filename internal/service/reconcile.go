package service

import (
	"context"
	"fmt"

	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// Repair rules applied by Reconcile.
const (
	// RuleMissingTenant: the apartment points at a user that does not exist.
	RuleMissingTenant = "missing-tenant"
	// RuleMissingApartment: the user points at an apartment that does not exist.
	RuleMissingApartment = "missing-apartment"
	// RuleMissingBackRef: the apartment points at a user that points nowhere.
	RuleMissingBackRef = "missing-back-reference"
	// RuleDuplicateTenant: the apartment points at a user who is settled in
	// another apartment that points back.
	RuleDuplicateTenant = "duplicate-tenant"
	// RuleStaleUserRef: the apartment points at a user whose own reference is
	// not returned by its target.
	RuleStaleUserRef = "stale-user-reference"
	// RuleStaleClaim: the user points at an apartment that points elsewhere.
	RuleStaleClaim = "stale-claim"
)

// Repair is a single planned write of Reconcile.
type Repair struct {
	Rule string `json:"rule"`
	// Kind is "user" or "apartment".
	Kind string `json:"kind"`
	ID   string `json:"id"`
	// Ref is the new reference; nil clears it.
	Ref   *string `json:"ref"`
	Error string  `json:"error,omitempty"`
}

// ReconcileReport summarizes a reconciliation pass.
type ReconcileReport struct {
	Users      int      `json:"users"`
	Apartments int      `json:"apartments"`
	Repairs    []Repair `json:"repairs"`
	Failed     int      `json:"failed"`
}

// planRepairs returns the writes that make every user/apartment pair
// symmetric. Apartments are authoritative: a user is re-pointed or cleared to
// match them, and an apartment is only cleared when its tenant is missing or
// already settled elsewhere.
func planRepairs(users []models.User, apartments []models.Apartment) []Repair {
	userRef := make(map[string]*string, len(users))
	for _, u := range users {
		userRef[u.ID] = u.ApartmentID
	}
	aptRef := make(map[string]*string, len(apartments))
	for _, a := range apartments {
		aptRef[a.ID] = a.TenantID
	}

	repairs := []Repair{}
	clearApartment := func(rule, id string) {
		aptRef[id] = nil
		repairs = append(repairs, Repair{Rule: rule, Kind: "apartment", ID: id})
	}
	pointUser := func(rule, id string, ref *string) {
		userRef[id] = ref
		repairs = append(repairs, Repair{Rule: rule, Kind: "user", ID: id, Ref: ref})
	}

	for _, a := range apartments {
		if a.TenantID == nil {
			continue
		}
		tenant := *a.TenantID
		ref, ok := userRef[tenant]
		switch {
		case !ok:
			clearApartment(RuleMissingTenant, a.ID)
		case ref == nil:
			pointUser(RuleMissingBackRef, tenant, models.StringPtr(a.ID))
		case *ref == a.ID:
		default:
			if back, exists := aptRef[*ref]; exists && back != nil && *back == tenant {
				clearApartment(RuleDuplicateTenant, a.ID)
			} else {
				pointUser(RuleStaleUserRef, tenant, models.StringPtr(a.ID))
			}
		}
	}

	for _, u := range users {
		ref := userRef[u.ID]
		if ref == nil {
			continue
		}
		back, ok := aptRef[*ref]
		switch {
		case !ok:
			pointUser(RuleMissingApartment, u.ID, nil)
		case back == nil || *back != u.ID:
			pointUser(RuleStaleClaim, u.ID, nil)
		}
	}
	return repairs
}

// Reconcile scans both collections and repairs asymmetric references. It is
// never run implicitly. A failed repair is recorded in the report and does
// not stop the pass.
func (r *Relationships) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	apartments, err := r.apartments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}

	report := &ReconcileReport{
		Users:      len(users),
		Apartments: len(apartments),
		Repairs:    planRepairs(users, apartments),
	}
	for i := range report.Repairs {
		rp := &report.Repairs[i]
		var err error
		if rp.Kind == "apartment" {
			err = r.setTenant(ctx, "reconcile", rp.ID, rp.Ref)
		} else {
			err = r.setApartment(ctx, "reconcile", rp.ID, rp.Ref)
		}
		if err != nil {
			rp.Error = err.Error()
			report.Failed++
			continue
		}
		if r.metrics != nil {
			r.metrics.Repairs.WithLabelValues(rp.Rule).Inc()
		}
	}

	r.log.Info("reconciliation finished",
		zap.Int("users", report.Users),
		zap.Int("apartments", report.Apartments),
		zap.Int("repairs", len(report.Repairs)),
		zap.Int("failed", report.Failed))
	return report, nil
}
