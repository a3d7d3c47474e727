package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fraudwatch/internal/client/authz"
	"github.com/dmitrijs2005/fraudwatch/internal/client/batch"
	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"github.com/dmitrijs2005/fraudwatch/internal/client/config"
	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fraudwatch/internal/client/services"
	"github.com/dmitrijs2005/fraudwatch/internal/client/session"
	"github.com/dmitrijs2005/fraudwatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

// readerFromLines feeds each line, newline terminated, to the prompts.
func readerFromLines(lines ...string) *bufio.Reader {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return bufio.NewReader(strings.NewReader(b.String()))
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

var (
	adminID = models.Identity{ID: "a1", Name: "Ann", Email: "ann@example.com", Role: models.RoleAdmin}
	userID  = models.Identity{ID: "u1", Name: "Bob", Email: "bob@example.com", Role: models.RoleUser}
)

// fakeAPI is an in-process client.Client.
type fakeAPI struct {
	mu sync.Mutex

	loginRet    *client.AuthResult
	loginErr    error
	lastRole    models.Role
	registerRet *client.AuthResult

	model      *client.ModelInfo
	modelErr   error
	dataset    *client.DatasetInfo
	datasetErr error

	verdicts   []client.Verdict
	predictErr error
	sent       []client.ScoringTransaction

	train      *client.TrainResult
	trainCalls int
	users      []models.Identity
	me         *models.Identity
}

func (f *fakeAPI) Login(ctx context.Context, email, password string, role models.Role) (*client.AuthResult, error) {
	f.lastRole = role
	return f.loginRet, f.loginErr
}
func (f *fakeAPI) Register(ctx context.Context, reg client.Registration) (*client.AuthResult, error) {
	return f.registerRet, nil
}
func (f *fakeAPI) Predict(ctx context.Context, txs []client.ScoringTransaction) (*client.PredictResult, error) {
	f.sent = txs
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	return &client.PredictResult{Predictions: f.verdicts}, nil
}
func (f *fakeAPI) ModelInfo(ctx context.Context) (*client.ModelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.model, f.modelErr
}
func (f *fakeAPI) DatasetInfo(ctx context.Context) (*client.DatasetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dataset, f.datasetErr
}
func (f *fakeAPI) Health(ctx context.Context) (*client.Health, error) {
	return &client.Health{Status: "healthy", Message: "up"}, nil
}
func (f *fakeAPI) TrainFromCSV(ctx context.Context) (*client.TrainResult, error) {
	f.trainCalls++
	return f.train, nil
}
func (f *fakeAPI) CurrentUser(ctx context.Context) (*models.Identity, error) {
	if f.me == nil {
		return nil, &client.ServiceError{Status: 404, Message: "User not found"}
	}
	return f.me, nil
}
func (f *fakeAPI) Users(ctx context.Context) ([]models.Identity, error) { return f.users, nil }

func newTestApp(t *testing.T, api client.Client, lines ...string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	sess := session.NewStore(metadata.NewMemoryRepository(), logging.Discard())
	out := &bytes.Buffer{}
	return &App{
		config:  cfg,
		log:     logging.Discard(),
		api:     api,
		auth:    services.NewAuthService(api, sess),
		session: sess,
		editor:  batch.NewEditor(),
		reader:  readerFromLines(lines...),
		out:     out,
		page:    authz.LoginPage,
	}, out
}

func loginAs(t *testing.T, a *App, id models.Identity) {
	t.Helper()
	require.NoError(t, a.session.Login(context.Background(), id, "tok"))
}

func fillRecord(t *testing.T, a *App, i int, amount string) {
	t.Helper()
	for _, f := range batch.Fields {
		require.NoError(t, a.editor.Update(i, f, "v"))
	}
	require.NoError(t, a.editor.Update(i, batch.FieldAmount, amount))
}

// ------------ tests ------------

func TestGetStatus(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{})
	assert.Equal(t, "(/login)", a.getStatus())

	loginAs(t, a, adminID)
	a.setPage(authz.TrainPage)
	assert.Equal(t, "(ann@example.com/admin /train)", a.getStatus())
}

func TestLogin_Success(t *testing.T) {
	stubPassword(t, "pw")
	api := &fakeAPI{loginRet: &client.AuthResult{Identity: adminID, Token: "tok"}}
	a, out := newTestApp(t, api, "ann@example.com", "admin")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, models.RoleAdmin, api.lastRole)
	assert.Equal(t, authz.DashboardPage, a.currentPage())
	assert.Contains(t, out.String(), "Welcome Administrator!")
}

func TestLogin_DefaultRoleAndUnknownRole(t *testing.T) {
	stubPassword(t, "pw")
	api := &fakeAPI{loginRet: &client.AuthResult{Identity: userID, Token: "tok"}}

	a, out := newTestApp(t, api, "bob@example.com", "")
	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, models.RoleUser, api.lastRole)
	assert.Contains(t, out.String(), "Welcome User!")

	a, _ = newTestApp(t, api, "bob@example.com", "root")
	err := a.Login(context.Background())
	require.Error(t, err)
	assert.False(t, a.isLoggedIn())
}

func TestLogin_ServiceRejects(t *testing.T) {
	stubPassword(t, "pw")
	api := &fakeAPI{loginErr: &client.ServiceError{Status: 401, Message: "Invalid email or password", Err: client.ErrUnauthorized}}
	a, _ := newTestApp(t, api, "x@y", "user")

	err := a.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", errorMessage(err))
	assert.False(t, a.isLoggedIn())
}

func TestRegister_AsksToLogIn(t *testing.T) {
	stubPassword(t, "pw")
	api := &fakeAPI{registerRet: &client.AuthResult{Identity: userID}}
	a, out := newTestApp(t, api, "bob", "bob@example.com")

	require.NoError(t, a.Register(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Account created. You can now log in.")
}

func TestWhoami(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(t, api)

	require.NoError(t, a.Whoami(context.Background()))
	assert.Contains(t, out.String(), "Not logged in.")

	loginAs(t, a, userID)
	out.Reset()
	require.NoError(t, a.Whoami(context.Background()))
	assert.Contains(t, out.String(), "Bob <bob@example.com> role=user id=u1")
	assert.Contains(t, out.String(), "Service check failed: User not found")

	api.me = &userID
	out.Reset()
	require.NoError(t, a.Whoami(context.Background()))
	assert.Contains(t, out.String(), "Service confirms: Bob <bob@example.com> role=user")
}

func TestHealth(t *testing.T) {
	a, out := newTestApp(t, &fakeAPI{})
	require.NoError(t, a.Health(context.Background()))
	assert.Contains(t, out.String(), "Service healthy: up")
}

func TestLogout_ClearsBatch(t *testing.T) {
	a, out := newTestApp(t, &fakeAPI{})
	loginAs(t, a, userID)
	a.editor.Add()

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, 0, a.editor.Len())
	assert.Equal(t, authz.LoginPage, a.currentPage())
	assert.Contains(t, out.String(), "Logged out.")

	require.NoError(t, a.Logout(context.Background()))
}

func TestPages_RedirectWhenLoggedOut(t *testing.T) {
	api := &fakeAPI{}
	for name, run := range map[string]func(*App) error{
		"dashboard": func(a *App) error { return a.Dashboard(context.Background()) },
		"analytics": func(a *App) error { return a.Analytics(context.Background()) },
		"detect":    func(a *App) error { return a.Detect(context.Background()) },
		"submit":    func(a *App) error { return a.Submit(context.Background()) },
		"train":     func(a *App) error { return a.Train(context.Background()) },
		"users":     func(a *App) error { return a.Users(context.Background()) },
	} {
		t.Run(name, func(t *testing.T) {
			a, out := newTestApp(t, api)
			require.NoError(t, run(a))
			assert.Contains(t, out.String(), "Please log in first")
			assert.Equal(t, authz.LoginPage, a.currentPage())
		})
	}
}

func TestPages_AdminOnlyDeniedForUser(t *testing.T) {
	api := &fakeAPI{train: &client.TrainResult{}}

	a, out := newTestApp(t, api, "y")
	loginAs(t, a, userID)
	a.setPage(authz.DashboardPage)

	require.NoError(t, a.Train(context.Background()))
	require.NoError(t, a.Users(context.Background()))

	s := out.String()
	assert.Contains(t, s, "Access Denied")
	assert.Contains(t, s, "only available to administrators")
	assert.Contains(t, s, "Current role: user")
	assert.Contains(t, s, "Required role: admin")
	assert.Equal(t, 0, api.trainCalls)
	assert.Equal(t, authz.DashboardPage, a.currentPage())
}

func TestTrain_Admin(t *testing.T) {
	tr := &client.TrainResult{Message: "Model trained successfully from CSV", ModelSaved: true,
		Metrics: map[string]json.RawMessage{"accuracy": json.RawMessage("0.97"), "auc": json.RawMessage("0.9")}}
	tr.DatasetInfo.TotalRows = 100
	api := &fakeAPI{train: tr}

	a, out := newTestApp(t, api, "y")
	loginAs(t, a, adminID)

	require.NoError(t, a.Train(context.Background()))
	assert.Equal(t, 1, api.trainCalls)
	s := out.String()
	assert.Contains(t, s, "Model trained successfully from CSV")
	assert.Less(t, strings.Index(s, "accuracy: 0.97"), strings.Index(s, "auc: 0.9"))

	a, _ = newTestApp(t, api, "n")
	loginAs(t, a, adminID)
	require.NoError(t, a.Train(context.Background()))
	assert.Equal(t, 1, api.trainCalls, "declined")
}

func TestUsers_Admin(t *testing.T) {
	api := &fakeAPI{users: []models.Identity{adminID, userID}}
	a, out := newTestApp(t, api)
	loginAs(t, a, adminID)

	require.NoError(t, a.Users(context.Background()))
	s := out.String()
	assert.Contains(t, s, "EMAIL")
	assert.Contains(t, s, "bob@example.com")
	assert.Equal(t, authz.UsersPage, a.currentPage())
}

func TestDashboard_PartialFailure(t *testing.T) {
	api := &fakeAPI{
		model:      &client.ModelInfo{ModelExists: true, ModelType: "RandomForestClassifier", ModelSizeMB: 1.5},
		datasetErr: &client.ServiceError{Status: 404, Message: "Dataset file not found"},
	}
	a, out := newTestApp(t, api)
	loginAs(t, a, userID)

	require.NoError(t, a.Dashboard(context.Background()))
	s := out.String()
	assert.Contains(t, s, "RandomForestClassifier")
	assert.Contains(t, s, "unavailable: Dataset file not found")
}

func TestAnalytics(t *testing.T) {
	api := &fakeAPI{dataset: &client.DatasetInfo{TotalRows: 200, FraudCount: 10, FraudPercentage: 5, Columns: []string{"Card Type"}}}
	a, out := newTestApp(t, api)
	loginAs(t, a, userID)

	require.NoError(t, a.Analytics(context.Background()))
	s := out.String()
	assert.Contains(t, s, "rows: 200")
	assert.Contains(t, s, "legitimate: 190 (95.00%)")
	assert.Contains(t, s, "  - Card Type")
}

func TestDetect_ModelNotTrained(t *testing.T) {
	api := &fakeAPI{model: &client.ModelInfo{ModelExists: false}}
	a, out := newTestApp(t, api)
	loginAs(t, a, adminID)

	require.NoError(t, a.Detect(context.Background()))
	require.NoError(t, a.Add(context.Background()))

	assert.Nil(t, a.workflow)
	assert.Equal(t, 0, a.editor.Len())
	assert.Contains(t, out.String(), "Please train the model first")
	assert.Contains(t, out.String(), "Type 'train'")
}

func TestDetect_AddSetRemoveSubmit(t *testing.T) {
	api := &fakeAPI{model: &client.ModelInfo{ModelExists: true}, verdicts: []client.Verdict{true}}
	a, out := newTestApp(t, api,
		// add: eight fields, amount and card type only
		"", "25.00", "", "", "", "Visa", "", "",
	)
	loginAs(t, a, userID)
	ctx := context.Background()

	require.NoError(t, a.Detect(ctx))
	require.NoError(t, a.Add(ctx))
	assert.Contains(t, out.String(), "Added transaction #1 (6/8 missing)")

	a.editor.Add()
	fillRecord(t, a, 1, "10")
	require.NoError(t, a.Set(ctx, []string{"1", "1", "2025-01-01", "10:00"}))
	r, _ := a.editor.Record(0)
	assert.Equal(t, "2025-01-01 10:00", r[batch.FieldDateTime])

	require.ErrorIs(t, a.Set(ctx, []string{"1"}), errUsage)
	require.Error(t, a.Set(ctx, []string{"0", "1", "x"}))
	require.ErrorIs(t, a.Set(ctx, []string{"9", "1", "x"}), batch.ErrIndexOutOfRange)
	require.ErrorIs(t, a.Set(ctx, []string{"1", "99", "x"}), batch.ErrUnknownField)

	require.NoError(t, a.Submit(ctx))
	require.Len(t, api.sent, 1)
	assert.Equal(t, json.Number("10"), api.sent[0].Amount)
	s := out.String()
	assert.Contains(t, s, "Scored 1 transaction(s): 1 flagged as fraud")
	assert.Contains(t, s, "Skipped 1 incomplete transaction(s): #1")
	assert.Contains(t, s, "FRAUD")
	assert.Contains(t, s, "not scored")

	out.Reset()
	require.NoError(t, a.Results(ctx))
	assert.Contains(t, out.String(), "FRAUD")

	require.NoError(t, a.Remove(ctx, []string{"1"}))
	assert.Equal(t, 1, a.editor.Len())
	out.Reset()
	require.NoError(t, a.Results(ctx))
	assert.Contains(t, out.String(), "No current results")

	require.NoError(t, a.Clear(ctx))
	out.Reset()
	require.NoError(t, a.List(ctx))
	assert.Contains(t, out.String(), "No transactions")
}

func TestSubmit_Validation(t *testing.T) {
	api := &fakeAPI{model: &client.ModelInfo{ModelExists: true}}
	a, _ := newTestApp(t, api)
	loginAs(t, a, userID)
	ctx := context.Background()

	err := a.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "add at least one transaction first", errorMessage(err))

	a.editor.Add()
	err = a.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "no transaction has every field filled in", errorMessage(err))
	assert.Nil(t, api.sent)
}

// End to end over HTTP: log in, build a batch, and have the service reject
// the token on submit.
func TestEndToEnd_SubmitThenSessionExpires(t *testing.T) {
	var mu sync.Mutex
	expired := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		if expired && r.URL.Path != "/login" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"Token has expired"}`)
			return
		}
		switch r.URL.Path {
		case "/login":
			_, _ = io.WriteString(w, `{"success":true,"token":"tok-1","user":{"_id":"u1","username":"bob","email":"bob@example.com","role":"user"}}`)
		case "/model-info":
			_, _ = io.WriteString(w, `{"model_exists":true,"model_type":"RandomForestClassifier"}`)
		case "/predict":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"predictions":[0,1],"fraud_count":1}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	stubPassword(t, "pw")
	sess := session.NewStore(metadata.NewMemoryRepository(), logging.Discard())
	cfg := &config.Config{}
	cfg.LoadDefaults()
	out := &bytes.Buffer{}
	a := &App{
		config:  cfg,
		log:     logging.Discard(),
		session: sess,
		editor:  batch.NewEditor(),
		reader:  readerFromLines("bob@example.com", "user"),
		out:     out,
		page:    authz.LoginPage,
	}
	api := client.NewHTTPClient(srv.URL,
		client.WithTokenSource(sess),
		client.WithUnauthorizedHandler(a.onUnauthorized),
	)
	a.api = api
	a.auth = services.NewAuthService(api, sess)

	ctx := context.Background()
	require.NoError(t, a.Login(ctx))
	require.NoError(t, a.Detect(ctx))
	for i := 0; i < 3; i++ {
		a.editor.Add()
	}
	fillRecord(t, a, 0, "1")
	fillRecord(t, a, 2, "3")

	require.NoError(t, a.Submit(ctx))
	outcome := a.workflow.Results()
	require.NotNil(t, outcome)
	assert.Equal(t, []int{1}, outcome.Skipped)
	fraud, ok := outcome.Lookup(2)
	assert.True(t, ok)
	assert.True(t, fraud)

	mu.Lock()
	expired = true
	mu.Unlock()
	before := a.editor.Records()

	err := a.Submit(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, authz.DashboardPage, a.currentPage())
	assert.Contains(t, out.String(), "Your session has expired")
	assert.Equal(t, before, a.editor.Records())

	out.Reset()
	require.NoError(t, a.Dashboard(ctx))
	assert.Contains(t, out.String(), "Please log in first")
}
