package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/quill/internal/blogapi"
	"github.com/mmcdole/quill/internal/config"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/feed"
	"github.com/mmcdole/quill/internal/log"
	"github.com/mmcdole/quill/internal/metrics"
	"github.com/mmcdole/quill/internal/query"
	"github.com/mmcdole/quill/internal/service"
	"github.com/mmcdole/quill/internal/session"
	"github.com/mmcdole/quill/internal/store"
	"github.com/mmcdole/quill/internal/tui"
	"github.com/mmcdole/quill/internal/tui/styles"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                          \r"

func main() {
	flags := pflag.NewFlagSet("quill", pflag.ExitOnError)
	config.RegisterFlags(flags)
	showVersion := flags.BoolP("version", "v", false, "print version")
	setup := flags.Bool("setup", false, "run the setup flow even when configured")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("quill %s\n", Version)
		return
	}

	if err := run(flags, *setup); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything wired from the configuration
type app struct {
	store   *store.BoltStore
	session *session.Session
	client  *blogapi.Client
	cache   *query.Cache[domain.PageResult]
	metrics *metrics.Recorder
}

func run(flags *pflag.FlagSet, forceSetup bool) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := log.Setup(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting quill", "version", Version)

	if forceSetup || !cfg.IsConfigured() {
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
	}

	a, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	defer a.store.Close()
	defer a.cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := a.metrics.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	accounts := service.NewAccountService(a.client, a.client, a.session, a.cache, logger)
	posts := service.NewPostService(a.client, a.cache, logger)
	profiles := service.NewProfileService(a.client, a.client, a.client, a.session, logger)
	history := service.NewSearchHistory(a.store, logger)

	model := tui.NewModel(tui.Deps{
		Cache:       a.cache,
		Auth:        a.session,
		Accounts:    accounts,
		Posts:       posts,
		Profiles:    profiles,
		History:     history,
		Likes:       a.client,
		Comments:    a.client,
		DefaultFeed: cfg.Feed.Default,
		Logger:      logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI", "server", cfg.Server.URL)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// wire builds the store, session, API client and page cache for cfg
func wire(cfg *config.Config, logger *slog.Logger) (*app, error) {
	dir := ""
	if cfg.Cache.Persist {
		dir = cfg.Cache.Dir
	}
	st, err := store.New(dir, cfg.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	sess := session.New(st, logger)
	recorder := metrics.NewRecorder()

	client, err := blogapi.NewClient(cfg.Server.URL, sess, logger,
		blogapi.WithTimeout(cfg.Server.Timeout),
		blogapi.WithHTTPClient(&http.Client{
			Transport: recorder.InstrumentTransport(http.DefaultTransport),
		}),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	cache := query.New(
		feed.NewFetcher(client, cfg.Feed.PageSize, cfg.Feed.SearchLimit),
		query.WithStaleTime(cfg.Cache.StaleTime),
		query.WithLogger(logger),
		query.WithRecorder(recorder),
		query.WithPersister(st),
	)

	return &app{
		store:   st,
		session: sess,
		client:  client,
		cache:   cache,
		metrics: recorder,
	}, nil
}

// runSetupFlow asks for the server URL and optionally logs in
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to quill!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// Loop until we get a reachable blog API
	for {
		fmt.Print("Enter the blog API URL (e.g., http://localhost:8000/api): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL := strings.TrimSpace(input)

		if serverURL == "" {
			fmt.Println("URL cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		normalized, err := probeWithSpinner(serverURL)
		if err != nil {
			fmt.Printf("\n%s Could not reach the blog API: %v\n", styles.ErrorStyle.Render("✗"), err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}

		cfg.Server.URL = normalized
		break
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("%s Configuration saved to %s\n\n", styles.SuccessStyle.Render("✓"), cfg.File())

	fmt.Print("Log in now? [y/N]: ")
	answer, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
		fmt.Println("You can log in later with Ctrl+L.")
		return nil
	}

	return loginFlow(cfg, reader, logger)
}

// loginFlow reads credentials from the terminal and stores the token
func loginFlow(cfg *config.Config, reader *bufio.Reader, logger *slog.Logger) error {
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	a, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	defer a.store.Close()
	defer a.cache.Close()

	accounts := service.NewAccountService(a.client, a.client, a.session, a.cache, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()
	if err := accounts.Login(ctx, strings.TrimSpace(email), string(passwordBytes)); err != nil {
		fmt.Printf("%s %s\n", styles.ErrorStyle.Render("✗"), domain.UserMessage(err))
		fmt.Println("You can try again later with Ctrl+L.")
		return nil
	}

	fmt.Printf("%s Logged in\n", styles.SuccessStyle.Render("✓"))
	return nil
}

// probeWithSpinner checks the URL with a visual spinner
func probeWithSpinner(serverURL string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	type result struct {
		url string
		err error
	}
	resultCh := make(chan result, 1)

	go func() {
		url, err := blogapi.Probe(ctx, serverURL)
		resultCh <- result{url, err}
	}()

	frames := spinner.Dot.Frames
	frame := 0

	fmt.Printf("\r%s Contacting server...", styles.SpinnerStyle.Render(frames[frame]))

	ticker := time.NewTicker(spinner.Dot.FPS)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if res.err != nil {
				return "", res.err
			}
			fmt.Printf("%s Found blog API at %s\n", styles.SuccessStyle.Render("✓"), res.url)
			return res.url, nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Contacting server...", styles.SpinnerStyle.Render(frames[frame%len(frames)]))

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return "", fmt.Errorf("timed out")
		}
	}
}
