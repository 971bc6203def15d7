package models

// Registration is the input of a sign-up or of an admin creating a user.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	// Role defaults to RoleTenant.
	Role Role `json:"role"`
	// ApartmentID, when set, links the new user to that apartment.
	ApartmentID *string `json:"apartmentId"`
}

// Credentials is a sign-in request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      User   `json:"user"`
}

// PaymentDetails is a payment with the records it refers to.
type PaymentDetails struct {
	Payment
	Tenant      *User               `json:"tenant,omitempty"`
	Apartment   *Apartment          `json:"apartment,omitempty"`
	Maintenance *MaintenanceRequest `json:"maintenance,omitempty"`
}

// MaintenanceDetails is a maintenance request with the records it refers to.
type MaintenanceDetails struct {
	MaintenanceRequest
	Apartment *Apartment `json:"apartment,omitempty"`
	Requester *User      `json:"requester,omitempty"`
	Payment   *Payment   `json:"payment,omitempty"`
}
