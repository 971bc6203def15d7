package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
)

func TestPrompter_Payment(t *testing.T) {
	input := "u1\na1\n1200.50\nrent\ncard\n2024-05-01\n\nMay rent\nm1\n"
	var out bytes.Buffer
	p := newPrompter(strings.NewReader(input), &out)

	pay, err := p.payment()
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if pay.TenantID != "u1" || pay.ApartmentID != "a1" {
		t.Errorf("refs = %q/%q; want u1/a1", pay.TenantID, pay.ApartmentID)
	}
	if pay.Amount != 1200.50 {
		t.Errorf("Amount = %v; want 1200.50", pay.Amount)
	}
	if want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC); !pay.Date.Equal(want) {
		t.Errorf("Date = %v; want %v", pay.Date, want)
	}
	if pay.Status != "" {
		t.Errorf("Status = %q; want empty", pay.Status)
	}
	if got := models.StringValue(pay.MaintenanceID); got != "m1" {
		t.Errorf("MaintenanceID = %q; want m1", got)
	}
	if !strings.Contains(out.String(), "Amount: ") {
		t.Errorf("prompt output missing label: %q", out.String())
	}
}

func TestPrompter_PaymentBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"amount", "u1\na1\nlots\n"},
		{"date", "u1\na1\n10\nrent\ncard\n01/05/2024\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			if _, err := p.payment(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPrompter_RegistrationWithoutApartment(t *testing.T) {
	p := newPrompter(strings.NewReader("bob@example.com\nsecret1\nbob\nBob Stone\n555\n\n"), &bytes.Buffer{})
	reg := p.registration()
	if reg.Email != "bob@example.com" || reg.FullName != "Bob Stone" {
		t.Errorf("unexpected registration %+v", reg)
	}
	if reg.ApartmentID != nil {
		t.Errorf("ApartmentID = %v; want nil", *reg.ApartmentID)
	}
}

func TestPrompter_Maintenance(t *testing.T) {
	p := newPrompter(strings.NewReader("a1\nu1\nplumbing\nLeak\nhigh\n80\ny\n"), &bytes.Buffer{})
	m, err := p.maintenance()
	if err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if m.Issue != "Leak" || m.EstimatedCost != 80 || !m.RequiresPayment {
		t.Errorf("unexpected request %+v", m)
	}
}

func TestShell_HelpUnknownAndUsage(t *testing.T) {
	var out bytes.Buffer
	sh := &shell{prompt: newPrompter(strings.NewReader(""), &out), out: &out}

	if err := sh.exec([]string{"help"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "assign <apartmentId> <userId>") {
		t.Errorf("help output = %q", out.String())
	}

	out.Reset()
	if err := sh.exec([]string{"frobnicate"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("unknown output = %q", out.String())
	}

	for _, args := range [][]string{{"assign", "a1"}, {"delete", "user"}, {"upload"}} {
		err := sh.exec(args)
		if apperr.CodeOf(err) != apperr.Validation {
			t.Errorf("%v: code = %q; want %q", args, apperr.CodeOf(err), apperr.Validation)
		}
	}
}

func TestShell_RunStopsOnExit(t *testing.T) {
	var out bytes.Buffer
	sh := &shell{prompt: newPrompter(strings.NewReader("\nhelp\nexit\nhelp\n"), &out), out: &out}
	sh.run()
	if got := strings.Count(out.String(), "Available commands"); got != 1 {
		t.Errorf("help printed %d times; want 1", got)
	}
	if !strings.HasSuffix(out.String(), "Bye\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDescribe(t *testing.T) {
	if got := describe(apperr.New(apperr.NotFound, "")); got != apperr.Message(apperr.NotFound) {
		t.Errorf("describe = %q", got)
	}
	if got := describe(usage("link")); !strings.Contains(got, `"link"`) {
		t.Errorf("describe = %q", got)
	}
}
