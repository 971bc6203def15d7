package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/client/api"
	"github.com/clivebixby0/myapt-2/internal/client/auth"
	"github.com/clivebixby0/myapt-2/internal/client/store"
	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  register | login | logout | whoami
  refresh | users | apartments | payments | maintenance
  add-user | add-apartment | add-payment | add-maintenance
  assign <apartmentId> <userId> | unassign <apartmentId> <userId>
  move <userId> <apartmentId|->
  link <maintenanceId> <paymentId>
  delete <user|apartment|payment|maintenance> <id>
  upload <remotePath> <localFile>
  help | exit`

// shell is the interactive client over the read model.
type shell struct {
	ctx     context.Context
	client  *api.Client
	store   *store.Store
	watcher *auth.Watcher
	prompt  *prompter
	out     io.Writer
}

// run reads commands until exit or end of input.
func (s *shell) run() {
	for {
		fmt.Fprint(s.out, "myapt> ")
		if !s.prompt.in.Scan() {
			return
		}
		args := strings.Fields(s.prompt.in.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		if err := s.exec(args); err != nil {
			fmt.Fprintln(s.out, "Error:", describe(err))
		}
	}
}

func (s *shell) exec(args []string) error {
	ctx := s.ctx
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "register":
		u, err := s.watcher.SignUp(ctx, s.prompt.registration())
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Signed in as %s\n", u.Email)
		return s.load()
	case "login":
		u, err := s.watcher.SignIn(ctx, s.prompt.credentials())
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Signed in as %s (%s)\n", u.Email, u.Role)
		return s.load()
	case "logout":
		return s.watcher.SignOut(ctx)
	case "whoami":
		if u := s.watcher.Current(); u != nil {
			fmt.Fprintf(s.out, "%s %s (%s, %s)\n", u.ID, u.Email, u.Role, u.Status)
		} else {
			fmt.Fprintln(s.out, "Not signed in")
		}
	case "refresh":
		return s.load()
	case "users":
		s.printUsers()
	case "apartments":
		s.printApartments()
	case "payments":
		s.printPayments()
	case "maintenance":
		s.printMaintenance()
	case "add-user":
		id, err := s.store.AddUser(ctx, s.prompt.registration())
		return s.created(id, err)
	case "add-apartment":
		a, err := s.prompt.apartment()
		if err != nil {
			return err
		}
		id, err := s.store.AddApartment(ctx, a)
		return s.created(id, err)
	case "add-payment":
		p, err := s.prompt.payment()
		if err != nil {
			return err
		}
		id, err := s.store.AddPayment(ctx, p)
		if err != nil && id != "" {
			fmt.Fprintf(s.out, "Payment %s was recorded but not linked\n", id)
		}
		return s.created(id, err)
	case "add-maintenance":
		m, err := s.prompt.maintenance()
		if err != nil {
			return err
		}
		id, err := s.store.AddMaintenance(ctx, m)
		return s.created(id, err)
	case "assign", "unassign", "link", "move":
		if len(args) != 3 {
			return usage(args[0])
		}
		return s.relate(ctx, args[0], args[1], args[2])
	case "delete":
		if len(args) != 3 {
			return usage(args[0])
		}
		return s.delete(ctx, args[1], args[2])
	case "upload":
		if len(args) != 3 {
			return usage(args[0])
		}
		return s.upload(ctx, args[1], args[2])
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (s *shell) relate(ctx context.Context, cmd, a, b string) error {
	var err error
	switch cmd {
	case "assign":
		err = s.store.AssignTenant(ctx, a, b)
	case "unassign":
		err = s.store.UnassignTenant(ctx, a, b)
	case "link":
		err = s.store.LinkPaymentToMaintenance(ctx, a, b)
	case "move":
		ref := models.SetRef(b)
		if b == "-" {
			ref = models.ClearRef()
		}
		err = s.store.UpdateUser(ctx, a, models.UserPatch{ApartmentID: ref})
	}
	if err == nil {
		fmt.Fprintln(s.out, "Done")
	}
	return err
}

func (s *shell) delete(ctx context.Context, kind, id string) error {
	var err error
	switch kind {
	case "user":
		err = s.store.DeleteUser(ctx, id)
	case "apartment":
		err = s.store.DeleteApartment(ctx, id)
	case "payment":
		err = s.store.DeletePayment(ctx, id)
	case "maintenance":
		err = s.store.DeleteMaintenance(ctx, id)
	default:
		return usage("delete")
	}
	if err == nil {
		fmt.Fprintf(s.out, "Deleted %s %s\n", kind, id)
	}
	return err
}

func (s *shell) upload(ctx context.Context, remote, local string) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()
	ct := mime.TypeByExtension(filepath.Ext(local))
	url, err := s.client.Upload(ctx, remote, f, ct)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, url)
	return nil
}

func (s *shell) load() error {
	rep, err := s.store.LoadAll(s.ctx)
	if err != nil {
		return err
	}
	if rep != nil && rep.Failed() > 0 {
		fmt.Fprintf(s.out, "Loaded with %d failed collection(s): %v\n", rep.Failed(), rep.Err())
	}
	return nil
}

func (s *shell) created(id string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Created %s\n", id)
	return nil
}

func (s *shell) table(header string, rows func(w io.Writer)) {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func (s *shell) printUsers() {
	s.table("ID\tEMAIL\tNAME\tROLE\tSTATUS\tAPARTMENT", func(w io.Writer) {
		for _, u := range s.store.Snapshot().Users {
			apt := models.StringValue(u.ApartmentID)
			if u.Apartment != nil {
				apt = u.Apartment.Number + " / " + u.Apartment.Building
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.FullName, u.Role, u.Status, apt)
		}
	})
}

func (s *shell) printApartments() {
	s.table("ID\tNUMBER\tBUILDING\tRENT\tSTATUS\tTENANT", func(w io.Writer) {
		for _, a := range s.store.Snapshot().Apartments {
			tenant := models.StringValue(a.TenantID)
			if a.Tenant != nil {
				tenant = a.Tenant.Email
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n", a.ID, a.Number, a.Building, a.MonthlyRent, a.Status, tenant)
		}
	})
}

func (s *shell) printPayments() {
	s.table("ID\tTENANT\tAPARTMENT\tAMOUNT\tTYPE\tDATE\tSTATUS\tMAINTENANCE", func(w io.Writer) {
		for _, p := range s.store.Snapshot().Payments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\t%s\n", p.ID, p.TenantID, p.ApartmentID, p.Amount,
				p.Type, p.Date.Format(time.DateOnly), p.Status, models.StringValue(p.MaintenanceID))
		}
	})
}

func (s *shell) printMaintenance() {
	s.table("ID\tAPARTMENT\tREQUESTED BY\tISSUE\tPRIORITY\tSTATUS\tPAYMENT", func(w io.Writer) {
		for _, m := range s.store.Snapshot().Maintenance {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.ApartmentID, m.RequestedBy, m.Issue,
				m.Priority, m.Status, models.StringValue(m.PaymentID))
		}
	})
}

func usage(cmd string) error {
	return apperr.Validationf("wrong arguments for %q, type 'help' for usage", cmd)
}

// describe returns the user-facing text of err.
func describe(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func main() {
	var (
		baseURL     string
		caFile      string
		sessionFile string
		refresh     time.Duration
		debug       bool
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for a self-signed server")
	flag.StringVar(&sessionFile, "session", defaultSessionPath(), "where the session token is kept")
	flag.DurationVar(&refresh, "refresh", 0, "reload the data this often (0 disables)")
	flag.BoolVar(&debug, "debug", false, "log client diagnostics to stderr")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("myapt client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	logger := zap.NewNop()
	if debug {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatal(err)
		}
		defer func() { _ = logger.Sync() }()
	}

	httpClient, err := api.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.New(baseURL, httpClient)
	st := store.New(client, logger)
	watcher := auth.NewWatcher(client, &auth.SessionFile{Path: sessionFile}, logger)

	sh := &shell{
		ctx:     ctx,
		client:  client,
		store:   st,
		watcher: watcher,
		prompt:  newPrompter(os.Stdin, os.Stdout),
		out:     os.Stdout,
	}

	if u, err := watcher.Restore(ctx); err != nil {
		fmt.Println("Saved session is no longer valid, please log in")
	} else if u != nil {
		fmt.Printf("Signed in as %s\n", u.Email)
		if err := sh.load(); err != nil {
			fmt.Println("Error:", describe(err))
		}
	}
	if refresh > 0 {
		st.StartAutoRefresh(ctx, refresh)
	}

	sh.run()
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "myapt-session.json"
	}
	return filepath.Join(dir, "myapt", "session.json")
}
