package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/clivebixby0/myapt-2/internal/models"
)

// prompter asks for field values one line at a time.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) ask(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

func (p *prompter) askFloat(label string) (float64, error) {
	v := p.ask(label)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %q", label, v)
	}
	return f, nil
}

func (p *prompter) askInt(label string) (int, error) {
	v := p.ask(label)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: not a whole number: %q", label, v)
	}
	return n, nil
}

// askRef returns nil for an empty answer.
func (p *prompter) askRef(label string) *string {
	if v := p.ask(label); v != "" {
		return &v
	}
	return nil
}

func (p *prompter) credentials() models.Credentials {
	return models.Credentials{
		Email:    p.ask("Email"),
		Password: p.ask("Password"),
	}
}

func (p *prompter) registration() models.Registration {
	return models.Registration{
		Email:       p.ask("Email"),
		Password:    p.ask("Password"),
		Username:    p.ask("Username"),
		FullName:    p.ask("Full name"),
		Phone:       p.ask("Phone"),
		ApartmentID: p.askRef("Apartment id (empty for none)"),
	}
}

func (p *prompter) apartment() (models.Apartment, error) {
	a := models.Apartment{
		Number:   p.ask("Apartment number"),
		Building: p.ask("Building"),
	}
	var err error
	if a.Floor, err = p.askInt("Floor"); err != nil {
		return a, err
	}
	if a.Bedrooms, err = p.askInt("Bedrooms"); err != nil {
		return a, err
	}
	if a.MonthlyRent, err = p.askFloat("Monthly rent"); err != nil {
		return a, err
	}
	a.Description = p.ask("Description")
	return a, nil
}

func (p *prompter) payment() (models.Payment, error) {
	pay := models.Payment{
		TenantID:    p.ask("Tenant id"),
		ApartmentID: p.ask("Apartment id"),
	}
	var err error
	if pay.Amount, err = p.askFloat("Amount"); err != nil {
		return pay, err
	}
	pay.Type = p.ask("Payment type (rent/deposit/maintenance)")
	pay.Method = p.ask("Payment method")
	if d := p.ask("Payment date (YYYY-MM-DD, empty for today)"); d != "" {
		if pay.Date, err = time.Parse(time.DateOnly, d); err != nil {
			return pay, fmt.Errorf("payment date: %w", err)
		}
	}
	pay.Status = models.PaymentStatus(p.ask("Status (empty for pending)"))
	pay.Description = p.ask("Description")
	pay.MaintenanceID = p.askRef("Maintenance request id (empty for none)")
	return pay, nil
}

func (p *prompter) maintenance() (models.MaintenanceRequest, error) {
	m := models.MaintenanceRequest{
		ApartmentID: p.ask("Apartment id"),
		RequestedBy: p.ask("Requested by (user id)"),
		IssueType:   p.ask("Issue type"),
		Issue:       p.ask("Issue"),
		Priority:    p.ask("Priority"),
	}
	var err error
	if m.EstimatedCost, err = p.askFloat("Estimated cost"); err != nil {
		return m, err
	}
	m.RequiresPayment = strings.EqualFold(p.ask("Requires payment (y/n)"), "y")
	return m, nil
}
