package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/clivebixby0/myapt-2/internal/models"
)

// SignUp registers a tenant and keeps the returned token.
func (c *Client) SignUp(ctx context.Context, reg models.Registration) (*models.SignInResult, error) {
	var res models.SignInResult
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/register", reg, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// SignIn opens a session and keeps the returned token.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error) {
	var res models.SignInResult
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// SignOut revokes the session. The local token is dropped even when the
// server cannot be reached.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.SetToken("")
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	return err
}

// Me returns the profile of the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns the users annotated with their apartments.
func (c *Client) ListUsers(ctx context.Context) ([]models.UserWithApartment, error) {
	var out []models.UserWithApartment
	_, err := c.do(ctx, http.MethodGet, "/api/users", nil, &out)
	return out, err
}

// ListUsersFlat returns the user documents without the join.
func (c *Client) ListUsersFlat(ctx context.Context) ([]models.User, error) {
	var out []models.User
	_, err := c.do(ctx, http.MethodGet, "/api/users?view=flat", nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, reg models.Registration) (string, error) {
	rep, err := c.do(ctx, http.MethodPost, "/api/users", reg, nil)
	if err != nil {
		return "", err
	}
	return rep.ID, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, p models.UserPatch) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/users/"+escape(id), p, nil)
	return err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/users/"+escape(id), nil, nil)
	return err
}

// ListApartments returns the apartments annotated with their tenants.
func (c *Client) ListApartments(ctx context.Context) ([]models.ApartmentWithTenant, error) {
	var out []models.ApartmentWithTenant
	_, err := c.do(ctx, http.MethodGet, "/api/apartments", nil, &out)
	return out, err
}

func (c *Client) CreateApartment(ctx context.Context, a models.Apartment) (string, error) {
	rep, err := c.do(ctx, http.MethodPost, "/api/apartments", a, nil)
	if err != nil {
		return "", err
	}
	return rep.ID, nil
}

func (c *Client) UpdateApartment(ctx context.Context, id string, p models.ApartmentPatch) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/apartments/"+escape(id), p, nil)
	return err
}

func (c *Client) DeleteApartment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/apartments/"+escape(id), nil, nil)
	return err
}

// AssignTenant points the apartment and the tenant at each other.
func (c *Client) AssignTenant(ctx context.Context, apartmentID, tenantID string) error {
	body := map[string]string{"tenantId": tenantID}
	_, err := c.do(ctx, http.MethodPut, "/api/apartments/"+escape(apartmentID)+"/tenant", body, nil)
	return err
}

// UnassignTenant clears both sides of the pair.
func (c *Client) UnassignTenant(ctx context.Context, apartmentID, tenantID string) error {
	path := "/api/apartments/" + escape(apartmentID) + "/tenant/" + escape(tenantID)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func (c *Client) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	_, err := c.do(ctx, http.MethodGet, "/api/payments", nil, &out)
	return out, err
}

// CreatePayment records a payment. When the server wrote the payment but
// failed to link the maintenance request, the id is returned with the error.
func (c *Client) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	rep, err := c.do(ctx, http.MethodPost, "/api/payments", p, nil)
	if rep != nil {
		return rep.ID, err
	}
	return "", err
}

func (c *Client) UpdatePayment(ctx context.Context, id string, p models.PaymentPatch) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/payments/"+escape(id), p, nil)
	return err
}

func (c *Client) DeletePayment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/payments/"+escape(id), nil, nil)
	return err
}

func (c *Client) ListMaintenance(ctx context.Context) ([]models.MaintenanceRequest, error) {
	var out []models.MaintenanceRequest
	_, err := c.do(ctx, http.MethodGet, "/api/maintenance", nil, &out)
	return out, err
}

func (c *Client) CreateMaintenance(ctx context.Context, m models.MaintenanceRequest) (string, error) {
	rep, err := c.do(ctx, http.MethodPost, "/api/maintenance", m, nil)
	if err != nil {
		return "", err
	}
	return rep.ID, nil
}

func (c *Client) UpdateMaintenance(ctx context.Context, id string, p models.MaintenancePatch) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/maintenance/"+escape(id), p, nil)
	return err
}

func (c *Client) DeleteMaintenance(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/maintenance/"+escape(id), nil, nil)
	return err
}

// LinkPayment records paymentID as the payment covering the request.
func (c *Client) LinkPayment(ctx context.Context, maintenanceID, paymentID string) error {
	body := map[string]string{"paymentId": paymentID}
	_, err := c.do(ctx, http.MethodPut, "/api/maintenance/"+escape(maintenanceID)+"/payment", body, nil)
	return err
}

// Upload stores a file at path and returns a URL to read it back.
func (c *Client) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files?path="+url.QueryEscape(path), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	rep, err := c.send(req, nil)
	if err != nil {
		return "", err
	}
	return rep.URL, nil
}
