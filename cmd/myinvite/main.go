package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/client"
	"github.com/luisthe-dev/myinvite-go/internal/logging"
	"github.com/luisthe-dev/myinvite-go/internal/session"

	log "github.com/sirupsen/logrus"
)

// myinvite is a terminal front door to the MyInvite API: it keeps a durable
// session per principal kind under the state dir, attaches it to every call
// and drops it when the backend says the session is dead.

const usageText = `usage: myinvite [flags] <command> [args]

commands:
  login <email> <password>       sign in as an attendee (with -admin: <username> <password>)
  verify <email> <code>          complete a signup / reset with the emailed code
  logout                         invalidate the session, local and remote
  whoami                         show the identity behind the stored session
  events                         list public events (admin: all events)
  event <id>                     show one event
  tickets                        list my tickets
  dashboard                      admin only: back-office stats
  users                          admin only: list platform users

flags:`

func usage() {
	fmt.Fprintln(os.Stderr, usageText)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	admin := flag.Bool("admin", false, "act on the back-office session instead of the attendee one")
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file (missing file means defaults)")
	stateDir := flag.String("state-dir", "", "directory for durable session state (default: config state_dir or ~/.myinvite)")
	apiAddress := flag.String("api", "", "MyInvite API address (default: MYINVITE_API_ADDRESS, config api_address or local)")
	logLevel := flag.String("log-level", "", "log level (default: config log_level or warn)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
	}

	tomlConfig, err := loadConfig(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	cliSettings, err := resolveSettings(tomlConfig, *apiAddress, *stateDir, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: filepath.Join(cliSettings.stateDir, "myinvite.log"),
		LogToStdout: false,
		LogLevel:    cliSettings.logLevel,
	})

	store := session.NewFileStore(cliSettings.stateDir)
	navigator := client.NewLogNavigator()
	cfg := client.Config{
		BaseAddress: cliSettings.apiAddress,
		Timeout:     30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *admin {
		err = runAdmin(ctx, cfg, store, navigator)
	} else {
		err = runUser(ctx, cfg, store, navigator)
	}
	if err != nil {
		log.Errorf("myinvite %s: %s", flag.Arg(0), err)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func runUser(ctx context.Context, cfg client.Config, store session.Store, navigator client.Navigator) error {
	c, err := client.NewUserClient(cfg, store, navigator)
	if err != nil {
		return err
	}

	switch cmd := flag.Arg(0); cmd {
	case "login":
		if flag.NArg() != 3 {
			return fmt.Errorf("login needs <email> <password>")
		}
		principal, err := c.Login(ctx, flag.Arg(1), flag.Arg(2))
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s <%s>\n", principal.FullName, principal.Email)
		return nil
	case "verify":
		if flag.NArg() != 3 {
			return fmt.Errorf("verify needs <email> <code>")
		}
		principal, err := c.VerifyOTP(ctx, flag.Arg(1), flag.Arg(2))
		if err != nil {
			return err
		}
		fmt.Printf("verified, logged in as %s <%s>\n", principal.FullName, principal.Email)
		return nil
	case "logout":
		if err := c.Logout(ctx); err != nil {
			// local session is gone regardless
			fmt.Println("logged out locally, backend said:", err)
			return nil
		}
		fmt.Println("logged out")
		return nil
	case "whoami":
		return printWhoami(ctx, c.Client)
	case "events":
		events, err := c.Events(ctx)
		if err != nil {
			return err
		}
		printEvents(events)
		return nil
	case "event":
		if flag.NArg() != 2 {
			return fmt.Errorf("event needs <id>")
		}
		id, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid event id: %s", flag.Arg(1))
		}
		event, err := c.Event(ctx, id)
		if err != nil {
			return err
		}
		printEvents([]client.Event{*event})
		return nil
	case "tickets":
		tickets, err := c.MyTickets(ctx)
		if err != nil {
			return err
		}
		if len(tickets) == 0 {
			fmt.Println("no tickets")
			return nil
		}
		for _, ticket := range tickets {
			fmt.Printf("[%d] %s, code %s (%s)\n", ticket.ID, ticket.EventTitle, ticket.Code, ticket.Status)
		}
		return nil
	case "dashboard", "users":
		return fmt.Errorf("%s is a back-office command, run it with -admin", cmd)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func runAdmin(ctx context.Context, cfg client.Config, store session.Store, navigator client.Navigator) error {
	c, err := client.NewAdminClient(cfg, store, navigator)
	if err != nil {
		return err
	}

	switch cmd := flag.Arg(0); cmd {
	case "login":
		if flag.NArg() != 3 {
			return fmt.Errorf("login needs <username> <password>")
		}
		principal, err := c.Login(ctx, flag.Arg(1), flag.Arg(2))
		if err != nil {
			return err
		}
		fmt.Printf("admin session open for %s\n", principal.FullName)
		return nil
	case "logout":
		if err := c.Logout(ctx); err != nil {
			fmt.Println("logged out locally, backend said:", err)
			return nil
		}
		fmt.Println("logged out")
		return nil
	case "whoami":
		return printWhoami(ctx, c.Client)
	case "events":
		events, err := c.Events(ctx)
		if err != nil {
			return err
		}
		printEvents(events)
		return nil
	case "dashboard":
		stats, err := c.Dashboard(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("users: %d\nevents: %d (active: %d)\ntickets sold: %d\nrevenue: %.2f\n",
			stats.TotalUsers, stats.TotalEvents, stats.ActiveEvents,
			stats.TicketsSold, float64(stats.RevenueCents)/100,
		)
		return nil
	case "users":
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		for _, user := range users {
			fmt.Printf("[%d] %s <%s> (%s)\n", user.ID, user.FullName, user.Email, user.Role)
		}
		return nil
	default:
		return fmt.Errorf("unknown admin command: %s", cmd)
	}
}

func printWhoami(ctx context.Context, c *client.Client) error {
	principal, err := c.Principal(ctx)
	if err != nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (%s), via %s session\n", principal.FullName, principal.Email, principal.Role, c.Kind())
	return nil
}

func printEvents(events []client.Event) {
	if len(events) == 0 {
		fmt.Println("no events")
		return
	}
	for _, event := range events {
		fmt.Printf("[%d] %s @ %s, %s | %s, %.2f, %d tickets left\n",
			event.ID, event.Title, event.Venue, event.City,
			event.StartsAt.Format("2006-01-02 15:04"),
			float64(event.PriceCents)/100, event.TicketsLeft,
		)
	}
}
