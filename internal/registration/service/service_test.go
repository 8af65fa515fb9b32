package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/earlyaccess/internal/cache"
	"github.com/dropDatabas3/earlyaccess/internal/events"
	"github.com/dropDatabas3/earlyaccess/internal/metrics"
	"github.com/dropDatabas3/earlyaccess/internal/registration"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store/memory"
	tokens "github.com/dropDatabas3/earlyaccess/internal/security/token"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // tokens
	to   []string
	err  error
}

func (m *fakeMailer) SendConfirmation(_ context.Context, to, _ string, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.sent = append(m.sent, token)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}
func (p *fakePublisher) Close() error { return nil }

// slowRepo retrasa GetByEmail para forzar solapamiento entre goroutines.
type slowRepo struct {
	store.Repository
	creates int
	mu      sync.Mutex
}

func (r *slowRepo) GetByEmail(ctx context.Context, email string) (*store.Registration, error) {
	time.Sleep(20 * time.Millisecond)
	return r.Repository.GetByEmail(ctx, email)
}

func (r *slowRepo) Create(ctx context.Context, reg *store.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.creates++
	r.mu.Unlock()
	return r.Repository.Create(ctx, reg)
}

// flakyRepo falla el primer MarkConfirmed con un error transitorio.
type flakyRepo struct {
	*memory.Store
	mu    sync.Mutex
	fails int
}

func (r *flakyRepo) MarkConfirmed(ctx context.Context, id string, at time.Time) (*store.Registration, error) {
	r.mu.Lock()
	if r.fails > 0 {
		r.fails--
		r.mu.Unlock()
		return nil, errors.New("connection reset by peer")
	}
	r.mu.Unlock()
	return r.Store.MarkConfirmed(ctx, id, at)
}

type fixture struct {
	svc       Service
	repo      *memory.Store
	mailer    *fakeMailer
	publisher *fakePublisher
	confirmer *tokens.Confirmer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conf, err := tokens.NewConfirmer("test-secret", "earlyaccess", time.Hour)
	require.NoError(t, err)
	conf = conf.WithClock(func() time.Time { return fixedNow })

	m, err := metrics.NewRegistration(prometheus.NewRegistry())
	require.NoError(t, err)

	f := &fixture{
		repo:      memory.New(),
		mailer:    &fakeMailer{},
		publisher: &fakePublisher{},
		confirmer: conf,
	}
	f.svc = New(Deps{
		Repo:      f.repo,
		Confirmer: conf,
		Mailer:    f.mailer,
		Publisher: f.publisher,
		Replay:    cache.NewMemory("", 0),
		Metrics:   m,
		Now:       func() time.Time { return fixedNow },
	})
	return f
}

func validFields() registration.Fields {
	return registration.Fields{
		Name:          "Ada Lovelace",
		Email:         "  Ada@Example.com ",
		DateOfBirth:   "1990-05-01",
		Location:      " London ",
		Gender:        registration.GenderFemale,
		TermsAccepted: true,
	}
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)
	ua := "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

	reg, err := f.svc.Register(context.Background(), RegisterInput{Fields: validFields(), ClientIP: "10.0.0.1", UserAgent: ua})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", reg.Email)
	assert.Equal(t, "London", reg.Fields.Location)
	assert.Equal(t, store.StatusPending, reg.Status)
	assert.Equal(t, fixedNow, reg.CreatedAt)
	assert.Equal(t, "Firefox", reg.Client.Browser)
	assert.False(t, reg.Client.Mobile)

	stored, err := f.repo.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, stored.ID)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, f.mailer.to)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, events.TypeRegistrationCreated, ev.Type)
	assert.Equal(t, reg.ID, ev.RegistrationID)
	assert.Equal(t, events.HashEmail("ada@example.com"), ev.EmailHash)
}

func TestRegister_InvalidReturnsAllErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Fields: registration.Fields{}})

	var errs registration.Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 6)
	assert.Equal(t, 0, f.repo.Len())
	assert.Empty(t, f.mailer.sent)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Fields: validFields()})
	require.NoError(t, err)

	again := validFields()
	again.Email = "ADA@example.com"
	_, err = f.svc.Register(ctx, RegisterInput{Fields: again})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, f.repo.Len())
}

func TestRegister_ConcurrentSameEmailCollapses(t *testing.T) {
	repo := &slowRepo{Repository: memory.New()}
	svc := New(Deps{Repo: repo, Now: func() time.Time { return fixedNow }})

	var wg sync.WaitGroup
	ids := make([]string, 5)
	errs := make([]error, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg, err := svc.Register(context.Background(), RegisterInput{Fields: validFields()})
			errs[i] = err
			if reg != nil {
				ids[i] = reg.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.creates)
	for i := range ids {
		// quien llega tarde ve el email ya tomado; quien se solapa comparte el resultado
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], ErrEmailTaken)
		}
	}
}

func TestRegister_LeaderDisconnectDoesNotFailFollowers(t *testing.T) {
	repo := &slowRepo{Repository: memory.New()}
	svc := New(Deps{Repo: repo, Now: func() time.Time { return fixedNow }})

	leaderCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var leaderErr, followerErr error
	var follower *store.Registration

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, leaderErr = svc.Register(leaderCtx, RegisterInput{Fields: validFields()})
	}()
	time.Sleep(5 * time.Millisecond)
	go func() {
		defer wg.Done()
		follower, followerErr = svc.Register(context.Background(), RegisterInput{Fields: validFields()})
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	wg.Wait()

	require.NoError(t, followerErr)
	require.NotNil(t, follower)
	assert.NoError(t, leaderErr)
	assert.Equal(t, 1, repo.creates)
}

func TestRegister_ConcurrentDifferentApplicantGetsEmailTaken(t *testing.T) {
	repo := &slowRepo{Repository: memory.New()}
	svc := New(Deps{Repo: repo, Now: func() time.Time { return fixedNow }})

	other := validFields()
	other.Name = "Someone Else"

	var wg sync.WaitGroup
	var firstErr, secondErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Register(context.Background(), RegisterInput{Fields: validFields()})
	}()
	time.Sleep(5 * time.Millisecond)
	go func() {
		defer wg.Done()
		_, secondErr = svc.Register(context.Background(), RegisterInput{Fields: other})
	}()
	wg.Wait()

	require.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, ErrEmailTaken)
	stored, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.Fields.Name)
}

func TestRegister_SoftFailures(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	f.publisher.err = errors.New("kafka down")

	reg, err := f.svc.Register(context.Background(), RegisterInput{Fields: validFields()})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)
}

func TestRegister_NoConfirmerSkipsEmail(t *testing.T) {
	repo := memory.New()
	mailer := &fakeMailer{}
	svc := New(Deps{Repo: repo, Mailer: mailer, Now: func() time.Time { return fixedNow }})

	_, err := svc.Register(context.Background(), RegisterInput{Fields: validFields()})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestConfirm_Flow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, RegisterInput{Fields: validFields()})
	require.NoError(t, err)
	tok := f.mailer.sent[0]

	got, err := f.svc.Confirm(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
	assert.Equal(t, store.StatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)

	_, err = f.svc.Confirm(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenReused)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, events.TypeRegistrationConfirmed, last.Type)
}

func TestConfirm_StoreFailureKeepsTokenUsable(t *testing.T) {
	repo := &flakyRepo{Store: memory.New(), fails: 1}
	mailer := &fakeMailer{}
	conf, err := tokens.NewConfirmer("test-secret", "earlyaccess", time.Hour)
	require.NoError(t, err)
	conf = conf.WithClock(func() time.Time { return fixedNow })
	svc := New(Deps{
		Repo:      repo,
		Confirmer: conf,
		Mailer:    mailer,
		Replay:    cache.NewMemory("", 0),
		Now:       func() time.Time { return fixedNow },
	})

	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Fields: validFields()})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	tok := mailer.sent[0]

	_, err = svc.Confirm(ctx, tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenReused)

	// el mismo link vuelve a funcionar
	got, err := svc.Confirm(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
	assert.Equal(t, store.StatusConfirmed, got.Status)

	_, err = svc.Confirm(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenReused)
}

func TestConfirm_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token válido para una inscripción inexistente
	tok, _, err := f.confirmer.Issue("00000000-0000-0000-0000-000000000000", "x@y.com")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, tok)
	assert.ErrorIs(t, err, ErrRegistrationMissing)

	// token vencido
	old := f.confirmer.WithClock(func() time.Time { return fixedNow.Add(-2 * time.Hour) })
	tok, _, err = old.Issue("id", "x@y.com")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestConfirm_EmailMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, RegisterInput{Fields: validFields()})
	require.NoError(t, err)

	tok, _, err := f.confirmer.Issue(reg.ID, "mallory@example.com")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	stored, _ := f.repo.GetByID(ctx, reg.ID)
	assert.Equal(t, store.StatusPending, stored.Status)
}

func TestConfirm_Unavailable(t *testing.T) {
	svc := New(Deps{Repo: memory.New()})
	_, err := svc.Confirm(context.Background(), "x")
	assert.ErrorIs(t, err, ErrConfirmUnavailable)
}

func TestFormSchema(t *testing.T) {
	svc := New(Deps{Repo: memory.New(), Legal: Legal{TermsURL: "https://ayen.example/terms"}})
	sc := svc.FormSchema()

	assert.Equal(t, FormTitle, sc.Title)
	require.Len(t, sc.Fields, 6)
	assert.Equal(t, registration.FieldName, sc.Fields[0].Name)
	assert.Equal(t, "Date of Birth", sc.Fields[2].Label)
	assert.Equal(t, "select", sc.Fields[4].Type)
	assert.Len(t, sc.Fields[4].Options, 4)
	assert.Equal(t, "https://ayen.example/terms", sc.TermsURL)
	assert.Equal(t, "/privacy", sc.PrivacyURL)
	assert.Equal(t, "1901-01-01", sc.MinDOB)
}
