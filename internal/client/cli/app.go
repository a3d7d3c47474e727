package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
	"github.com/dmitrijs2005/fraudwatch/internal/client/batch"
	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"github.com/dmitrijs2005/fraudwatch/internal/client/config"
	"github.com/dmitrijs2005/fraudwatch/internal/client/prediction"
	"github.com/dmitrijs2005/fraudwatch/internal/client/services"
	"github.com/dmitrijs2005/fraudwatch/internal/client/session"
	"github.com/dmitrijs2005/fraudwatch/internal/client/storage"
	"github.com/dmitrijs2005/fraudwatch/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	store    *storage.Store
	api      client.Client
	auth     services.AuthService
	session  *session.Store
	editor   *batch.Editor
	workflow *prediction.Workflow
	reader   *bufio.Reader
	out      io.Writer

	// mu guards page and out; the 401 hook may run from request goroutines.
	mu   sync.Mutex
	page authz.Page
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	st, err := storage.Open(ctx, c.Storage)
	if err != nil {
		log.Error(ctx, "error opening session storage", "driver", c.Storage.Driver, "err", err)
		return nil, err
	}

	sess := session.NewStore(st.Metadata, log)

	a := &App{
		config:  c,
		log:     log,
		store:   st,
		session: sess,
		editor:  batch.NewEditor(),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		page:    authz.LoginPage,
	}

	api := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithTokenSource(sess),
		client.WithLogger(log),
		client.WithUnauthorizedHandler(a.onUnauthorized),
	)
	a.api = api
	a.auth = services.NewAuthService(api, sess)

	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.store.Close(); err != nil {
			a.log.Warn(ctx, "closing session storage", "err", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// onUnauthorized runs on any 401: the session is dropped and the user is
// sent home, which in turn asks them to log in. The batch is left alone.
func (a *App) onUnauthorized(ctx context.Context) {
	wasLoggedIn := a.session.IsAuthenticated()
	a.session.Expire(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.page = authz.DashboardPage
	if wasLoggedIn {
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	}
}

func (a *App) scoringDefaults() prediction.Defaults {
	if a.config == nil {
		return prediction.StandardDefaults
	}
	return prediction.Defaults{
		MerchantCategoryCode: a.config.Scoring.MerchantCategoryCode,
		ResponseCode:         a.config.Scoring.ResponseCode,
	}
}

func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) currentPage() authz.Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

func (a *App) setPage(p authz.Page) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.page = p
}
