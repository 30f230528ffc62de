package jobboard_test

import (
	"context"
	"database/sql"

	jobboard "github.com/goliatone/go-jobboard"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockJobs implements jobboard.Jobs for the methods the engine exercises.
// The embedded repository interface covers the remaining surface.
type MockJobs struct {
	mock.Mock
	repository.Repository[*jobboard.Job]
}

func (m *MockJobs) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*jobboard.Job, error) {
	args := m.Called(ctx, id, criteria)
	if job, ok := args.Get(0).(*jobboard.Job); ok {
		return job, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobs) Create(ctx context.Context, record *jobboard.Job, criteria ...repository.InsertCriteria) (*jobboard.Job, error) {
	args := m.Called(ctx, record, criteria)
	if job, ok := args.Get(0).(*jobboard.Job); ok {
		return job, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobs) CreateTx(ctx context.Context, tx bun.IDB, record *jobboard.Job, criteria ...repository.InsertCriteria) (*jobboard.Job, error) {
	args := m.Called(ctx, tx, record, criteria)
	if job, ok := args.Get(0).(*jobboard.Job); ok {
		return job, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobs) GetForEmployer(ctx context.Context, employerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*jobboard.Job, error) {
	args := m.Called(ctx, employerID, criteria)
	if jobs, ok := args.Get(0).([]*jobboard.Job); ok {
		return jobs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobs) UpdateStatusIf(ctx context.Context, id string, expected, target jobboard.JobStatus, opts ...jobboard.JobStatusUpdateOption) (*jobboard.Job, error) {
	args := m.Called(ctx, id, expected, target, opts)
	if job, ok := args.Get(0).(*jobboard.Job); ok {
		return job, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobs) UpdateStatusIfTx(ctx context.Context, tx bun.IDB, id string, expected, target jobboard.JobStatus, opts ...jobboard.JobStatusUpdateOption) (*jobboard.Job, error) {
	args := m.Called(ctx, tx, id, expected, target, opts)
	if job, ok := args.Get(0).(*jobboard.Job); ok {
		return job, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockApplications implements jobboard.Applications for the methods the
// engine exercises.
type MockApplications struct {
	mock.Mock
	repository.Repository[*jobboard.Application]
}

func (m *MockApplications) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*jobboard.Application, error) {
	args := m.Called(ctx, id, criteria)
	if app, ok := args.Get(0).(*jobboard.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplications) Create(ctx context.Context, record *jobboard.Application, criteria ...repository.InsertCriteria) (*jobboard.Application, error) {
	args := m.Called(ctx, record, criteria)
	if app, ok := args.Get(0).(*jobboard.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplications) CreateTx(ctx context.Context, tx bun.IDB, record *jobboard.Application, criteria ...repository.InsertCriteria) (*jobboard.Application, error) {
	args := m.Called(ctx, tx, record, criteria)
	if app, ok := args.Get(0).(*jobboard.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplications) GetForJob(ctx context.Context, jobID uuid.UUID, criteria ...repository.SelectCriteria) ([]*jobboard.Application, error) {
	args := m.Called(ctx, jobID, criteria)
	if apps, ok := args.Get(0).([]*jobboard.Application); ok {
		return apps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplications) GetForSeeker(ctx context.Context, seekerID uuid.UUID, criteria ...repository.SelectCriteria) ([]*jobboard.Application, error) {
	args := m.Called(ctx, seekerID, criteria)
	if apps, ok := args.Get(0).([]*jobboard.Application); ok {
		return apps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplications) UpdateStatusIf(ctx context.Context, id string, expected, target jobboard.ApplicationStatus, opts ...jobboard.ApplicationStatusUpdateOption) (*jobboard.Application, error) {
	args := m.Called(ctx, id, expected, target, opts)
	if app, ok := args.Get(0).(*jobboard.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplications) UpdateStatusIfTx(ctx context.Context, tx bun.IDB, id string, expected, target jobboard.ApplicationStatus, opts ...jobboard.ApplicationStatusUpdateOption) (*jobboard.Application, error) {
	args := m.Called(ctx, tx, id, expected, target, opts)
	if app, ok := args.Get(0).(*jobboard.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentities implements jobboard.Identities for the methods the
// resolver exercises.
type MockIdentities struct {
	mock.Mock
	repository.Repository[*jobboard.Identity]
}

func (m *MockIdentities) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*jobboard.Identity, error) {
	args := m.Called(ctx, id, criteria)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentities) Create(ctx context.Context, record *jobboard.Identity, criteria ...repository.InsertCriteria) (*jobboard.Identity, error) {
	args := m.Called(ctx, record, criteria)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentities) CreateTx(ctx context.Context, tx bun.IDB, record *jobboard.Identity, criteria ...repository.InsertCriteria) (*jobboard.Identity, error) {
	args := m.Called(ctx, tx, record, criteria)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentities) UpdateTx(ctx context.Context, tx bun.IDB, record *jobboard.Identity, criteria ...repository.UpdateCriteria) (*jobboard.Identity, error) {
	args := m.Called(ctx, tx, record, criteria)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentities) GetByEmail(ctx context.Context, email string) (*jobboard.Identity, error) {
	args := m.Called(ctx, email)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentities) CompleteOnboarding(ctx context.Context, id uuid.UUID) (*jobboard.Identity, error) {
	args := m.Called(ctx, id)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentities) CompleteOnboardingTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*jobboard.Identity, error) {
	args := m.Called(ctx, tx, id)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepoManager wires the three repository mocks together.
type MockRepoManager struct {
	JobsRepo         *MockJobs
	ApplicationsRepo *MockApplications
	IdentitiesRepo   *MockIdentities
}

func NewMockRepoManager() *MockRepoManager {
	return &MockRepoManager{
		JobsRepo:         &MockJobs{},
		ApplicationsRepo: &MockApplications{},
		IdentitiesRepo:   &MockIdentities{},
	}
}

func (m *MockRepoManager) Validate() error { return nil }
func (m *MockRepoManager) MustValidate()   {}

func (m *MockRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepoManager) Identities() jobboard.Identities     { return m.IdentitiesRepo }
func (m *MockRepoManager) Jobs() jobboard.Jobs                 { return m.JobsRepo }
func (m *MockRepoManager) Applications() jobboard.Applications { return m.ApplicationsRepo }

// MockActivitySink records lifecycle events for assertions.
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event jobboard.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockTokenService implements jobboard.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(identity *jobboard.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *jobboard.JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (jobboard.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(jobboard.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentityResolver implements jobboard.IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, sessionToken string) (*jobboard.Identity, error) {
	args := m.Called(ctx, sessionToken)
	if identity, ok := args.Get(0).(*jobboard.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockContext mocks the router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}

// testConfig implements jobboard.Config with fixed values
type testConfig struct{}

func (testConfig) GetSigningKey() string     { return "test-signing-key-000000000000000" }
func (testConfig) GetSigningMethod() string  { return "HS256" }
func (testConfig) GetContextKey() string     { return "board_session" }
func (testConfig) GetTokenExpiration() int   { return 24 }
func (testConfig) GetIssuer() string         { return "go-jobboard-test" }
func (testConfig) GetAudience() []string     { return []string{"board"} }
func (testConfig) GetLoginPath() string      { return "/login" }
func (testConfig) GetDashboardPath() string  { return "/dashboard" }
func (testConfig) GetOnboardingPath() string { return "/onboarding" }
