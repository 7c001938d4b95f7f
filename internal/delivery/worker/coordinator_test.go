package worker

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"peerbackup/config"
	domainerrors "peerbackup/internal/domain/errors"
	"peerbackup/internal/domain/entity"
	"peerbackup/internal/domain/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) IsFormatted(ctx context.Context) (bool, error) {
	args := m.Called(ctx)

	return args.Bool(0), args.Error(1)
}

func (m *mockStore) FormatNewDatabase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) InitDatabase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type emitted struct {
	severity entity.Severity
	text     string
}

type recordingSink struct {
	mu    sync.Mutex
	lines []emitted
}

func (s *recordingSink) Emit(severity entity.Severity, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = append(s.lines, emitted{severity: severity, text: text})
}

func (s *recordingSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, l.text)
	}

	return out
}

func (s *recordingSink) has(text string) bool {
	for _, t := range s.texts() {
		if t == text {
			return true
		}
	}

	return false
}

func newTestCoordinator(store *mockStore, sink *recordingSink) *Coordinator {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return NewCoordinator(Params{
		Store:  store,
		Sink:   sink,
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func waitForState(t *testing.T, c *Coordinator, want lifecycle.State) {
	t.Helper()

	require.Eventually(t, func() bool {
		return c.State() == want
	}, 2*time.Second, 5*time.Millisecond, "state never became %s", want)
}

func TestCoordinator_FreshStoreRunsAndStops(t *testing.T) {
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).Return(false, nil).Once()
	store.On("FormatNewDatabase", mock.Anything).Return(nil).Once()
	store.On("InitDatabase", mock.Anything).Return(nil).Once()
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	assert.Equal(t, lifecycle.Stopped, c.State())

	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, lifecycle.Running)

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, lifecycle.Stopped, c.State())

	assert.Equal(t, []string{
		"Starting.",
		"No system database file. Creating a new one.",
		"Started.",
		"Stopping.",
		"Shutting Down.",
		"Stopped.",
	}, sink.texts())
	store.AssertExpectations(t)
}

func TestCoordinator_FormattedStoreSkipsFormat(t *testing.T) {
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).Return(true, nil).Once()
	store.On("InitDatabase", mock.Anything).Return(nil).Once()
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, lifecycle.Running)
	require.NoError(t, c.Shutdown(context.Background()))

	store.AssertNotCalled(t, "FormatNewDatabase", mock.Anything)
	assert.False(t, sink.has("No system database file. Creating a new one."))
	assert.True(t, sink.has("Shutdown."))
	assert.Equal(t, lifecycle.Stopped, c.State())
}

func TestCoordinator_IncompatibleVersionStopsOnItsOwn(t *testing.T) {
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).Return(true, nil).Once()
	store.On("InitDatabase", mock.Anything).Return(domainerrors.ErrIncompatibleVersion).Once()
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	require.NoError(t, c.Start(context.Background()))

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after a startup failure")
	}

	assert.Equal(t, lifecycle.Stopped, c.State())
	assert.False(t, sink.has("Started."))

	texts := sink.texts()
	require.GreaterOrEqual(t, len(texts), 3)
	assert.Equal(t, "Stopped.", texts[len(texts)-1])
	assert.Equal(t, "Shutting Down.", texts[len(texts)-2])
	assert.Equal(t, "Unable to start the database. Incompatible database version.", texts[len(texts)-3])

	sink.mu.Lock()
	assert.Equal(t, entity.SeverityError, sink.lines[len(sink.lines)-3].severity)
	sink.mu.Unlock()

	// A stop after the worker already gave up is a no-op.
	require.NoError(t, c.Stop(context.Background()))
}

func TestCoordinator_FormatFailureReported(t *testing.T) {
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).Return(false, nil).Once()
	store.On("FormatNewDatabase", mock.Anything).Return(domainerrors.ErrAdminBootstrapFailed).Once()
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	require.NoError(t, c.Start(context.Background()))
	<-c.Done()

	assert.True(t, sink.has("Unable to format the database. Failed to create default admin account."))
	store.AssertNotCalled(t, "InitDatabase", mock.Anything)
	assert.Equal(t, lifecycle.Stopped, c.State())
}

func TestCoordinator_StartTwiceFails(t *testing.T) {
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).Return(true, nil)
	store.On("InitDatabase", mock.Anything).Return(nil)
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	require.NoError(t, c.Start(context.Background()))

	err := c.Start(context.Background())
	require.ErrorIs(t, err, ErrNotStopped)

	require.NoError(t, c.Stop(context.Background()))

	// A stopped coordinator may be started again.
	require.NoError(t, c.Start(context.Background()))
	waitForState(t, c, lifecycle.Running)
	require.NoError(t, c.Stop(context.Background()))
}

func TestCoordinator_StopDuringStartup(t *testing.T) {
	release := make(chan struct{})
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).Return(true, nil)
	store.On("InitDatabase", mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
		}).
		Return(nil)
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	require.NoError(t, c.Start(context.Background()))

	stopErr := make(chan error, 1)
	go func() {
		stopErr <- c.Stop(context.Background())
	}()

	waitForState(t, c, lifecycle.StopPending)
	close(release)

	require.NoError(t, <-stopErr)
	assert.Equal(t, lifecycle.Stopped, c.State())
	assert.False(t, sink.has("Started."))
}

func TestCoordinator_StopTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).
		Run(func(args mock.Arguments) {
			<-release
		}).
		Return(true, nil)
	store.On("InitDatabase", mock.Anything).Return(nil).Maybe()
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	c.stopTimeout = 20 * time.Millisecond
	require.NoError(t, c.Start(context.Background()))

	err := c.Stop(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "did not stop in time"))
	assert.Equal(t, lifecycle.StopPending, c.State())
}

func TestCoordinator_PanicIsReported(t *testing.T) {
	store := &mockStore{}
	store.On("IsFormatted", mock.Anything).
		Run(func(args mock.Arguments) {
			panic("disk on fire")
		}).
		Return(false, nil)
	sink := &recordingSink{}

	c := newTestCoordinator(store, sink)
	require.NoError(t, c.Start(context.Background()))
	<-c.Done()

	assert.True(t, sink.has("Exception: disk on fire"))
	texts := sink.texts()
	assert.Equal(t, "Shutting Down.", texts[len(texts)-2])
	assert.Equal(t, lifecycle.Stopped, c.State())
}

func TestCoordinator_RunningRequestIgnoredAfterStop(t *testing.T) {
	c := newTestCoordinator(&mockStore{}, &recordingSink{})
	c.state = lifecycle.StopPending

	c.deliver(c.logger, entity.WorkerReport{
		LogMessage:      "Started.",
		ServiceState:    lifecycle.Running,
		SetServiceState: true,
	})

	assert.Equal(t, lifecycle.StopPending, c.State())
}
