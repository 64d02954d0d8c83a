// Command portalctl drives the lab portal from a terminal using the same
// session and route gate a browser client uses.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akamensky/argparse"
	"github.com/joho/godotenv"

	"github.com/hongminglow/lab-portal/internal/client"
)

func main() {
	_ = godotenv.Load()

	parser := argparse.NewParser("portalctl", "Lab portal command line client")
	baseURL := parser.String("s", "server", &argparse.Options{Help: "Portal base URL", Default: envOr("PORTAL_URL", "http://localhost:8080")})
	tokenFile := parser.String("t", "token-file", &argparse.Options{Help: "Where the session token is kept", Default: envOr("PORTAL_TOKEN_FILE", defaultTokenFile())})

	loginCmd := parser.NewCommand("login", "Log in and remember the session")
	username := loginCmd.String("u", "username", &argparse.Options{Help: "Username or email", Required: true})
	password := loginCmd.String("p", "password", &argparse.Options{Help: "Password (defaults to $PORTAL_PASSWORD)", Default: os.Getenv("PORTAL_PASSWORD")})

	logoutCmd := parser.NewCommand("logout", "Forget the stored session")
	whoamiCmd := parser.NewCommand("whoami", "Show the user behind the stored session")

	visitCmd := parser.NewCommand("visit", "Check whether the session may open a client route")
	visitPath := visitCmd.String("p", "path", &argparse.Options{Help: "Client route, e.g. /admin/news", Required: true})

	newsCmd := parser.NewCommand("news", "List news")
	newsStatus := newsCmd.String("", "status", &argparse.Options{Help: "published, draft or all (editors only for the last two)", Default: ""})
	newsPage := newsCmd.Int("", "page", &argparse.Options{Help: "Page number", Default: 1})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api := client.NewAPI(*baseURL)
	session := client.NewSession(api, client.NewFileTokenStore(*tokenFile))

	var err error
	switch {
	case loginCmd.Happened():
		err = runLogin(ctx, session, *username, *password)
	case logoutCmd.Happened():
		session.Logout()
		fmt.Println("logged out")
	case whoamiCmd.Happened():
		err = runWhoami(ctx, session)
	case visitCmd.Happened():
		err = runVisit(ctx, session, *visitPath)
	case newsCmd.Happened():
		err = runNews(ctx, session, api, *newsStatus, *newsPage)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, s *client.Session, username, password string) error {
	if password == "" {
		return fmt.Errorf("password is required (-p or PORTAL_PASSWORD)")
	}
	res := s.Login(ctx, username, password)
	if !res.OK {
		return fmt.Errorf("%s", res.Error)
	}
	u := s.User()
	fmt.Printf("logged in as %s (%s)\n", u.Username, u.Role)
	return nil
}

func runWhoami(ctx context.Context, s *client.Session) error {
	if !s.InitializeAuth(ctx) {
		return fmt.Errorf("not logged in")
	}
	u := s.User()
	fmt.Printf("%s [%s] %s <%s> role=%s\n", s.Initials(), u.Username, u.FullName, u.Email, u.Role)
	return nil
}

func runVisit(ctx context.Context, s *client.Session, path string) error {
	s.InitializeAuth(ctx)
	nav := client.NewRouteGate(s, "/login").Check(path)
	switch nav.Outcome {
	case client.Redirect:
		fmt.Printf("%s: redirect to %s\n", path, nav.Redirect)
	case client.Forbidden:
		return fmt.Errorf("%s: %w", path, nav.Err)
	default:
		fmt.Printf("%s: allowed\n", path)
	}
	return nil
}

func runNews(ctx context.Context, s *client.Session, api *client.API, status string, page int) error {
	// anonymous listing works too; a stored session only widens what is visible
	s.InitializeAuth(ctx)
	list, err := api.ListNews(ctx, status, page, 0)
	if err != nil {
		return err
	}
	for _, n := range list.Items {
		fmt.Printf("#%d [%s] %s\n", n.ID, n.Status, n.Title)
	}
	fmt.Printf("page %d/%d, %d total\n", list.Pagination.Page, list.Pagination.Pages, list.Pagination.Total)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".lab-portal-token.json"
	}
	return filepath.Join(home, ".lab-portal", "token.json")
}
