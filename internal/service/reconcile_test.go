package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clivebixby0/myapt-2/internal/metrics"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userAt(id string, apt *string) models.User {
	u := tenant(id)
	u.ApartmentID = apt
	u.Status = UserStatusFor(u.Status, apt)
	return u
}

func aptHeldBy(id string, tenantID *string) models.Apartment {
	a := apartment(id)
	a.TenantID = tenantID
	a.Status = ApartmentStatusFor(tenantID)
	return a
}

func TestPlanRepairs(t *testing.T) {
	ref := models.StringPtr

	tests := []struct {
		name       string
		users      []models.User
		apartments []models.Apartment
		want       []Repair
	}{
		{
			name:       "consistent",
			users:      []models.User{userAt("u1", ref("a1")), userAt("u2", nil)},
			apartments: []models.Apartment{aptHeldBy("a1", ref("u1")), aptHeldBy("a2", nil)},
			want:       []Repair{},
		},
		{
			name:       "apartment points at missing user",
			apartments: []models.Apartment{aptHeldBy("a1", ref("ghost"))},
			want:       []Repair{{Rule: RuleMissingTenant, Kind: "apartment", ID: "a1"}},
		},
		{
			name:  "user points at missing apartment",
			users: []models.User{userAt("u1", ref("gone"))},
			want:  []Repair{{Rule: RuleMissingApartment, Kind: "user", ID: "u1"}},
		},
		{
			name:       "user lost its back reference",
			users:      []models.User{userAt("u1", nil)},
			apartments: []models.Apartment{aptHeldBy("a1", ref("u1"))},
			want:       []Repair{{Rule: RuleMissingBackRef, Kind: "user", ID: "u1", Ref: ref("a1")}},
		},
		{
			name:  "tenant settled in another apartment",
			users: []models.User{userAt("u1", ref("b"))},
			apartments: []models.Apartment{
				aptHeldBy("a", ref("u1")),
				aptHeldBy("b", ref("u1")),
			},
			want: []Repair{{Rule: RuleDuplicateTenant, Kind: "apartment", ID: "a"}},
		},
		{
			name:  "tenant points at apartment held by someone else",
			users: []models.User{userAt("u1", ref("b")), userAt("u2", ref("b"))},
			apartments: []models.Apartment{
				aptHeldBy("a", ref("u1")),
				aptHeldBy("b", ref("u2")),
			},
			want: []Repair{{Rule: RuleStaleUserRef, Kind: "user", ID: "u1", Ref: ref("a")}},
		},
		{
			name:       "user claims an empty apartment",
			users:      []models.User{userAt("u1", ref("a1"))},
			apartments: []models.Apartment{aptHeldBy("a1", nil)},
			want:       []Repair{{Rule: RuleStaleClaim, Kind: "user", ID: "u1"}},
		},
		{
			name:  "two apartments with a tenant that points nowhere",
			users: []models.User{userAt("u1", nil)},
			apartments: []models.Apartment{
				aptHeldBy("a1", ref("u1")),
				aptHeldBy("a2", ref("u1")),
			},
			want: []Repair{
				{Rule: RuleMissingBackRef, Kind: "user", ID: "u1", Ref: ref("a1")},
				{Rule: RuleDuplicateTenant, Kind: "apartment", ID: "a2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planRepairs(tt.users, tt.apartments)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanRepairs_ResultIsConsistent(t *testing.T) {
	ref := models.StringPtr
	users := newMemUsers(
		userAt("u1", ref("b")),
		userAt("u2", ref("b")),
		userAt("u3", ref("gone")),
		userAt("u4", nil),
	)
	apartments := newMemApartments(
		aptHeldBy("a", ref("u1")),
		aptHeldBy("b", ref("u2")),
		aptHeldBy("c", ref("u4")),
		aptHeldBy("d", ref("ghost")),
	)
	rel := NewRelationships(users, apartments, nil, metrics.New())

	_, err := rel.Reconcile(context.Background())
	require.NoError(t, err)

	us, _ := users.List(context.Background())
	as, _ := apartments.List(context.Background())
	assert.Empty(t, planRepairs(us, as))
	assertPaired(t, users, apartments, "u1", "a")
	assertPaired(t, users, apartments, "u2", "b")
	assertPaired(t, users, apartments, "u4", "c")
	assert.Nil(t, users.get("u3").ApartmentID)
	assert.Nil(t, apartments.get("d").TenantID)
}

func TestReconcile_RecordsFailedRepairs(t *testing.T) {
	users := newMemUsers(userAt("u1", models.StringPtr("gone")))
	users.SetApartmentFunc = func(string) error { return errors.New("write failed") }
	rel := NewRelationships(users, newMemApartments(), nil, nil)

	report, err := rel.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Repairs, 1)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "write failed", report.Repairs[0].Error)
	assert.Equal(t, 1, report.Users)
}
