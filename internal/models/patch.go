package models

import (
	"encoding/json"
	"time"
)

// RefPatch is a partial update of an optional reference. It tells an absent
// field apart from an explicit null, since only a present relationship field
// triggers relationship synchronization.
type RefPatch struct {
	// Set is true when the field was present in the patch.
	Set bool
	// ID is the new reference; nil clears it.
	ID *string
}

// SetRef returns a patch pointing the reference at id.
func SetRef(id string) RefPatch { return RefPatch{Set: true, ID: &id} }

// ClearRef returns a patch clearing the reference.
func ClearRef() RefPatch { return RefPatch{Set: true} }

// UnmarshalJSON marks the reference as present. null and "" clear it.
func (r *RefPatch) UnmarshalJSON(b []byte) error {
	r.Set = true
	r.ID = nil
	if string(b) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	if id != "" {
		r.ID = &id
	}
	return nil
}

// MarshalJSON encodes the reference as a string or null.
func (r RefPatch) MarshalJSON() ([]byte, error) {
	if r.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*r.ID)
}

func put[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

func putRef(m map[string]any, key string, r RefPatch) {
	if r.Set {
		m[key] = r
	}
}

// UserPatch is a partial update of a user. Nil fields are left unchanged.
type UserPatch struct {
	Email       *string     `json:"email"`
	Username    *string     `json:"username"`
	FullName    *string     `json:"fullName"`
	Phone       *string     `json:"phone"`
	Address     *string     `json:"address"`
	Country     *string     `json:"country"`
	Role        *Role       `json:"role"`
	Status      *UserStatus `json:"status"`
	ApartmentID RefPatch    `json:"apartmentId"`
}

// MarshalJSON encodes only the fields present in the patch.
func (p UserPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	put(m, "email", p.Email)
	put(m, "username", p.Username)
	put(m, "fullName", p.FullName)
	put(m, "phone", p.Phone)
	put(m, "address", p.Address)
	put(m, "country", p.Country)
	put(m, "role", p.Role)
	put(m, "status", p.Status)
	putRef(m, "apartmentId", p.ApartmentID)
	return json.Marshal(m)
}

// Apply writes the present fields of the patch onto u.
func (p UserPatch) Apply(u *User) {
	apply(&u.Email, p.Email)
	apply(&u.Username, p.Username)
	apply(&u.FullName, p.FullName)
	apply(&u.Phone, p.Phone)
	apply(&u.Address, p.Address)
	apply(&u.Country, p.Country)
	apply(&u.Role, p.Role)
	apply(&u.Status, p.Status)
	if p.ApartmentID.Set {
		u.ApartmentID = p.ApartmentID.ID
	}
}

// ApartmentPatch is a partial update of an apartment.
type ApartmentPatch struct {
	Number      *string          `json:"apartmentNumber"`
	Building    *string          `json:"building"`
	Floor       *int             `json:"floor"`
	Bedrooms    *int             `json:"bedrooms"`
	Bathrooms   *int             `json:"bathrooms"`
	SquareFeet  *int             `json:"squareFeet"`
	MonthlyRent *float64         `json:"monthlyRent"`
	Description *string          `json:"description"`
	Status      *ApartmentStatus `json:"status"`
	TenantID    RefPatch         `json:"tenantId"`
}

// MarshalJSON encodes only the fields present in the patch.
func (p ApartmentPatch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	put(m, "apartmentNumber", p.Number)
	put(m, "building", p.Building)
	put(m, "floor", p.Floor)
	put(m, "bedrooms", p.Bedrooms)
	put(m, "bathrooms", p.Bathrooms)
	put(m, "squareFeet", p.SquareFeet)
	put(m, "monthlyRent", p.MonthlyRent)
	put(m, "description", p.Description)
	put(m, "status", p.Status)
	putRef(m, "tenantId", p.TenantID)
	return json.Marshal(m)
}

// Apply writes the present fields of the patch onto a.
func (p ApartmentPatch) Apply(a *Apartment) {
	apply(&a.Number, p.Number)
	apply(&a.Building, p.Building)
	apply(&a.Floor, p.Floor)
	apply(&a.Bedrooms, p.Bedrooms)
	apply(&a.Bathrooms, p.Bathrooms)
	apply(&a.SquareFeet, p.SquareFeet)
	apply(&a.MonthlyRent, p.MonthlyRent)
	apply(&a.Description, p.Description)
	apply(&a.Status, p.Status)
	if p.TenantID.Set {
		a.TenantID = p.TenantID.ID
	}
}

// PaymentPatch is a partial update of a payment.
type PaymentPatch struct {
	TenantID    *string        `json:"tenantId,omitempty"`
	ApartmentID *string        `json:"apartmentId,omitempty"`
	Amount      *float64       `json:"amount,omitempty"`
	Type        *string        `json:"paymentType,omitempty"`
	Method      *string        `json:"paymentMethod,omitempty"`
	Date        *time.Time     `json:"paymentDate,omitempty"`
	Status      *PaymentStatus `json:"status,omitempty"`
	Description *string        `json:"description,omitempty"`
}

// Apply writes the present fields of the patch onto p.
func (pp PaymentPatch) Apply(p *Payment) {
	apply(&p.TenantID, pp.TenantID)
	apply(&p.ApartmentID, pp.ApartmentID)
	apply(&p.Amount, pp.Amount)
	apply(&p.Type, pp.Type)
	apply(&p.Method, pp.Method)
	apply(&p.Date, pp.Date)
	apply(&p.Status, pp.Status)
	apply(&p.Description, pp.Description)
}

// MaintenancePatch is a partial update of a maintenance request.
type MaintenancePatch struct {
	IssueType       *string            `json:"issueType,omitempty"`
	Issue           *string            `json:"issue,omitempty"`
	Priority        *string            `json:"priority,omitempty"`
	Status          *MaintenanceStatus `json:"status,omitempty"`
	AssignedTo      *string            `json:"assignedTo,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	EstimatedCost   *float64           `json:"estimatedCost,omitempty"`
	RequiresPayment *bool              `json:"requiresPayment,omitempty"`
}

// Apply writes the present fields of the patch onto m.
func (mp MaintenancePatch) Apply(m *MaintenanceRequest) {
	apply(&m.IssueType, mp.IssueType)
	apply(&m.Issue, mp.Issue)
	apply(&m.Priority, mp.Priority)
	apply(&m.Status, mp.Status)
	apply(&m.AssignedTo, mp.AssignedTo)
	apply(&m.Notes, mp.Notes)
	apply(&m.EstimatedCost, mp.EstimatedCost)
	apply(&m.RequiresPayment, mp.RequiresPayment)
}

func apply[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
