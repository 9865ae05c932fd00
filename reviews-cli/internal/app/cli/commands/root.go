// Package commands собирает дерево команд reviews-cli
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/pkg/reviewquery"
	"sentimentreviews/reviews-cli/internal/app/cli/client"
	"sentimentreviews/reviews-cli/internal/app/cli/config"
	"sentimentreviews/reviews-cli/internal/app/cli/render"
	"sentimentreviews/reviews-cli/internal/app/cli/session"

	"github.com/spf13/cobra"
)

const appName = "reviews-cli"

var ErrNotLoggedIn = errors.New("not logged in: run 'reviews-cli login' first")

// App - зависимости, общие для всех команд
type App struct {
	cfg     *config.Config
	session *session.Session
	api     *client.APIClient
}

// NewRootCommand строит дерево команд; cfg задает значения флагов по умолчанию
func NewRootCommand(cfg *config.Config) *cobra.Command {
	app := &App{cfg: cfg}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Sentiment-analyzed product reviews from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.API.ReviewsURL, "api-url", cfg.API.ReviewsURL, "Review service base URL (env REVIEWS_API_URL)")
	flags.StringVar(&cfg.API.AuthURL, "auth-url", cfg.API.AuthURL, "Auth service base URL (env REVIEWS_AUTH_URL)")
	flags.StringVar(&cfg.Session.File, "session-file", cfg.Session.File, "Session file (env REVIEWS_SESSION_FILE)")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	flags.DurationVar(&cfg.API.Timeout, "timeout", cfg.API.Timeout, "HTTP request timeout")

	root.AddCommand(
		app.signupCommand(),
		app.loginCommand(),
		app.logoutCommand(),
		app.whoamiCommand(),
		app.reviewsCommand(),
		app.dashboardCommand(),
		app.createCommand(),
		app.editCommand(),
		app.deleteCommand(),
	)

	return root
}

func (a *App) init() error {
	logger.InitConsole(appName, a.cfg.Log.Level)

	sess, err := session.Load(a.cfg.Session.File)
	if err != nil {
		return err
	}
	a.session = sess

	a.api = client.NewAPIClient(a.cfg.API.ReviewsURL, a.cfg.API.AuthURL, a.cfg.API.Timeout)
	a.api.SetAuthToken(sess.Token())

	logger.Debug().
		Str("api_url", a.cfg.API.ReviewsURL).
		Str("session_file", a.cfg.Session.File).
		Bool("logged_in", sess.IsLoggedIn()).
		Msg("CLI initialized")
	return nil
}

func (a *App) requireLogin() error {
	if !a.session.IsLoggedIn() {
		return ErrNotLoggedIn
	}
	return nil
}

// apiError переводит ошибку API в сообщение; на 401 сессия сбрасывается
func (a *App) apiError(err error) error {
	if client.IsStatus(err, http.StatusUnauthorized) && a.session.IsLoggedIn() {
		if logoutErr := a.session.Logout(); logoutErr != nil {
			logger.Warn().Err(logoutErr).Msg("Failed to clear expired session")
		}
		return errors.New("session expired, please log in again")
	}
	return err
}

func printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout())
}

// prompter читает ответы из stdin команды построчно
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askIfEmpty спрашивает значение, если оно не передано флагом
func (p *prompter) askIfEmpty(value *string, label string) error {
	if *value != "" {
		return nil
	}
	answer, err := p.ask(label)
	if err != nil {
		return err
	}
	*value = answer
	return nil
}

// criteriaFlags - фильтры списка отзывов
type criteriaFlags struct {
	sentiment string
	rating    string
	search    string
	start     string
	end       string
	sort      string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.sentiment, "sentiment", "all", "Filter by sentiment: all, positive, negative, neutral")
	flags.StringVar(&f.rating, "rating", "all", "Filter by rating: all or 1..5")
	flags.StringVar(&f.search, "search", "", "Case-insensitive product name search")
	flags.StringVar(&f.start, "start", "", "Created on or after (2006-01-02 or RFC3339)")
	flags.StringVar(&f.end, "end", "", "Created on or before (2006-01-02 or RFC3339)")
	flags.StringVar(&f.sort, "sort", "newest", "Sort: newest, oldest, highest, lowest")
}

func (f *criteriaFlags) criteria() (reviewquery.Criteria, error) {
	criteria := reviewquery.DefaultCriteria()

	sentiment, err := reviewquery.ParseSentiment(f.sentiment)
	if err != nil {
		return criteria, err
	}
	rating, err := reviewquery.ParseRatingFilter(f.rating)
	if err != nil {
		return criteria, err
	}
	sortOrder, err := reviewquery.ParseSortOrder(f.sort)
	if err != nil {
		return criteria, err
	}
	start, err := parseDate(f.start)
	if err != nil {
		return criteria, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseDate(f.end)
	if err != nil {
		return criteria, fmt.Errorf("invalid --end: %w", err)
	}

	return criteria.
		WithSentiment(sentiment).
		WithRating(rating).
		WithSearch(f.search).
		WithDateRange(start, end).
		WithSort(sortOrder), nil
}

const dateLayout = "2006-01-02"

// parseDate: дата без времени означает полночь UTC
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("expected %s or RFC3339, got %q", dateLayout, value)
	}
	return &t, nil
}
