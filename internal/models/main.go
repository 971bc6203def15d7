// Package models defines the core data structures for users, apartments,
// payments and maintenance requests.
package models

import "time"

// Role is the access level of a user.
type Role string

const (
	// RoleAdmin manages every collection.
	RoleAdmin Role = "admin"
	// RoleTenant sees and manages only their own records.
	RoleTenant Role = "tenant"
)

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	// UserActive is a usable account without an apartment.
	UserActive UserStatus = "active"
	// UserAssigned is a usable account linked to an apartment.
	UserAssigned UserStatus = "assigned"
	// UserDisabled is an account switched off by an admin.
	UserDisabled UserStatus = "disabled"
	// UserSuspended is a temporarily blocked account.
	UserSuspended UserStatus = "suspended"
	// UserPassive is a dormant account.
	UserPassive UserStatus = "passive"
)

// Blocked reports whether st keeps the user from signing in. Blocked
// statuses survive apartment assignment changes.
func Blocked(st UserStatus) bool {
	return st == UserDisabled || st == UserSuspended
}

// ApartmentStatus is the occupancy state of an apartment.
type ApartmentStatus string

const (
	ApartmentAvailable        ApartmentStatus = "Available"
	ApartmentOccupied         ApartmentStatus = "Occupied"
	ApartmentUnderMaintenance ApartmentStatus = "Under Maintenance"
	ApartmentReserved         ApartmentStatus = "Reserved"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

// MaintenanceStatus is the progress state of a maintenance request.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// User is the profile document of an authenticated identity.
type User struct {
	// ID equals the identity provider subject id.
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	FullName string     `json:"fullName"`
	Phone    string     `json:"phone"`
	Address  string     `json:"address"`
	Country  string     `json:"country"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
	// ApartmentID is the back-reference to the apartment the user rents.
	// It must agree with Apartment.TenantID.
	ApartmentID *string   `json:"apartmentId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Apartment is a rentable unit.
type Apartment struct {
	ID          string          `json:"id"`
	Number      string          `json:"apartmentNumber"`
	Building    string          `json:"building"`
	Floor       int             `json:"floor"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	SquareFeet  int             `json:"squareFeet"`
	MonthlyRent float64         `json:"monthlyRent"`
	Description string          `json:"description"`
	Status      ApartmentStatus `json:"status"`
	// TenantID is the back-reference to the renting user. It must agree with
	// User.ApartmentID.
	TenantID  *string   `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Payment is a single payment made by a tenant for an apartment.
type Payment struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenantId"`
	ApartmentID string        `json:"apartmentId"`
	Amount      float64       `json:"amount"`
	Type        string        `json:"paymentType"`
	Method      string        `json:"paymentMethod"`
	Date        time.Time     `json:"paymentDate"`
	Status      PaymentStatus `json:"status"`
	Description string        `json:"description"`
	// MaintenanceID links the payment to the maintenance request it covers.
	MaintenanceID *string   `json:"maintenanceId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MaintenanceRequest is a repair request raised for an apartment.
type MaintenanceRequest struct {
	ID              string            `json:"id"`
	ApartmentID     string            `json:"apartmentId"`
	RequestedBy     string            `json:"requestedBy"`
	IssueType       string            `json:"issueType"`
	Issue           string            `json:"issue"`
	Priority        string            `json:"priority"`
	Status          MaintenanceStatus `json:"status"`
	AssignedTo      string            `json:"assignedTo"`
	Notes           string            `json:"notes"`
	EstimatedCost   float64           `json:"estimatedCost"`
	RequiresPayment bool              `json:"requiresPayment"`
	RequestDate     time.Time         `json:"requestDate"`
	// PaymentID links the request to the payment covering its cost. It is
	// never cleared when either side is deleted.
	PaymentID *string   `json:"paymentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserWithApartment is a user annotated with the apartment it points at.
type UserWithApartment struct {
	User
	Apartment *Apartment `json:"apartment,omitempty"`
}

// ApartmentWithTenant is an apartment annotated with the user it points at.
type ApartmentWithTenant struct {
	Apartment
	Tenant *User `json:"tenant,omitempty"`
}

// Identity holds the credentials of a user known to the identity provider.
type Identity struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session is the authenticated caller of an operation. It is derived per
// request from the session token and the users collection.
type Session struct {
	// TokenID identifies the session token, used for sign-out.
	TokenID string
	// ExpiresAt is the token expiry.
	ExpiresAt time.Time
	// User is the freshly loaded profile of the caller.
	User User
}

// UserID returns the id of the authenticated user.
func (s Session) UserID() string { return s.User.ID }

// IsAdmin reports whether the caller is an admin.
func (s Session) IsAdmin() bool { return s.User.IsAdmin() }

// StringPtr returns a pointer to a copy of v.
func StringPtr(v string) *string { return &v }

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// SameRef reports whether two optional references point at the same id.
func SameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
