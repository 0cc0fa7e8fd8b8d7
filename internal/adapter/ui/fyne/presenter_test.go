package fyne

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/analysis"
	"github.com/tejashwikalptaru/goradio/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/goradio/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/goradio/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/goradio/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/logger"
	"github.com/tejashwikalptaru/goradio/internal/service"
	"github.com/tejashwikalptaru/goradio/internal/testutil"
)

var (
	jazzFM   = domain.Station{ID: "a", Name: "Jazz FM", Genre: "Jazz", StreamURL: "http://jazz.example/live", ImageURL: "http://img.example/a.png"}
	rockHits = domain.Station{ID: "b", Name: "Rock Hits", Genre: "Rock", StreamURL: "http://rock.example/live", ImageURL: "http://img.example/b.png"}
)

type sliceCatalog []domain.Station

func (c sliceCatalog) All() []domain.Station {
	out := make([]domain.Station, len(c))
	copy(out, c)
	return out
}

func (c sliceCatalog) Get(id string) (domain.Station, error) {
	for _, st := range c {
		if st.ID == id {
			return st, nil
		}
	}
	return domain.Station{}, domain.ErrStationNotFound
}

func (c sliceCatalog) Len() int { return len(c) }

// fakeArtwork serves bytes per URL. URLs with a gate block until it is closed.
type fakeArtwork struct {
	images   map[string][]byte
	gates    map[string]chan struct{}
	finished atomic.Int32
}

func (a *fakeArtwork) Fetch(ctx context.Context, url string) ([]byte, error) {
	defer a.finished.Add(1)

	if gate, ok := a.gates[url]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	data, ok := a.images[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

// fakeView records the latest value of every view call.
type fakeView struct {
	mu sync.Mutex

	stations       []domain.Station
	stationArtwork map[string][]byte
	suggestions    []string
	active         domain.Station
	artwork        []byte
	cleared        int
	title          string
	state          domain.PlaybackState
	level          float64
	volume         float64
	theme          string
	notifications  []string
}

func newFakeView() *fakeView {
	return &fakeView{stationArtwork: make(map[string][]byte)}
}

func (v *fakeView) SetStations(stations []domain.Station) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stations = stations
}

func (v *fakeView) SetStationArtwork(id string, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stationArtwork[id] = data
}

func (v *fakeView) SetSuggestions(suggestions []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions = suggestions
}

func (v *fakeView) SetActiveStation(station domain.Station) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = station
}

func (v *fakeView) SetArtwork(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.artwork = data
}

func (v *fakeView) ClearArtwork() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.artwork = nil
	v.cleared++
}

func (v *fakeView) SetStreamTitle(title string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.title = title
}

func (v *fakeView) SetPlaybackState(state domain.PlaybackState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = state
}

func (v *fakeView) SetLevel(level float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.level = level
}

func (v *fakeView) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *fakeView) SetTheme(theme string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.theme = theme
}

func (v *fakeView) ShowNotification(title, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, title+": "+message)
}

func (v *fakeView) snapshot() fakeView {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := fakeView{
		stations:       v.stations,
		stationArtwork: make(map[string][]byte, len(v.stationArtwork)),
		suggestions:    v.suggestions,
		active:         v.active,
		artwork:        v.artwork,
		cleared:        v.cleared,
		title:          v.title,
		state:          v.state,
		level:          v.level,
		volume:         v.volume,
		theme:          v.theme,
		notifications:  append([]string(nil), v.notifications...),
	}
	for k, d := range v.stationArtwork {
		out.stationArtwork[k] = d
	}
	return out
}

type presenterFixture struct {
	sched     *scheduler.Manual
	sources   *mock.Factory
	bus       *eventbus.SyncEventBus
	ctrl      *service.PlaybackController
	prefs     *service.PreferenceService
	artwork   *fakeArtwork
	view      *fakeView
	presenter *Presenter
}

func newPresenterFixture(t *testing.T, gates map[string]chan struct{}) *presenterFixture {
	t.Helper()
	testLogger := logger.NewTestLogger()

	f := &presenterFixture{
		sched:   scheduler.NewManual(time.Unix(0, 0)),
		sources: mock.NewFactory(),
		bus:     eventbus.NewSyncEventBus(),
		artwork: &fakeArtwork{
			images: map[string][]byte{
				jazzFM.ImageURL:   []byte("jazz"),
				rockHits.ImageURL: []byte("rock"),
			},
			gates: gates,
		},
		view: newFakeView(),
	}

	f.ctrl = service.NewPlaybackController(testLogger, f.sources, analysis.NewFactory(testLogger),
		f.sched, f.bus, nil, service.DefaultControllerConfig())
	stations := service.NewStationService(testLogger, sliceCatalog{jazzFM, rockHits}, f.bus)
	f.prefs = service.NewPreferenceService(testLogger,
		memory.NewPreferencesRepository(test.NewApp().Preferences()), f.bus)

	f.presenter = NewPresenter(testLogger, f.ctrl, stations, f.prefs, f.artwork, f.bus, f.view)
	t.Cleanup(f.presenter.Shutdown)
	return f
}

func TestPresenter_InitialSync(t *testing.T) {
	f := newPresenterFixture(t, nil)

	v := f.view.snapshot()
	assert.Equal(t, domain.MaxVolume, v.volume)
	assert.Equal(t, domain.ThemeDark, v.theme)
	assert.Equal(t, []domain.Station{jazzFM, rockHits}, v.stations)
	assert.Equal(t, domain.StateIdle, v.state)
	assert.Equal(t, 1, v.cleared)

	assert.Eventually(t, func() bool {
		return len(f.view.snapshot().stationArtwork) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte("rock"), f.view.snapshot().stationArtwork["b"])
}

func TestPresenter_StationSelection(t *testing.T) {
	f := newPresenterFixture(t, nil)

	f.presenter.OnStationSelected(jazzFM)
	f.sched.Flush()

	v := f.view.snapshot()
	assert.Equal(t, jazzFM, v.active)
	assert.Equal(t, domain.StatePlaying, v.state)
	require.NotNil(t, f.presenter.Current())
	assert.Equal(t, "a", f.presenter.Current().ID)

	assert.Eventually(t, func() bool {
		return string(f.view.snapshot().artwork) == "jazz"
	}, time.Second, 5*time.Millisecond)

	f.sources.Last().EmitTitle("Miles Davis - So What")
	f.sched.Flush()
	assert.Equal(t, "Miles Davis - So What", f.view.snapshot().title)

	// A new station clears the old title
	f.presenter.OnStationSelected(rockHits)
	f.sched.Flush()
	assert.Empty(t, f.view.snapshot().title)
}

func TestPresenter_StaleArtworkIsDropped(t *testing.T) {
	gate := make(chan struct{})
	f := newPresenterFixture(t, map[string]chan struct{}{jazzFM.ImageURL: gate})

	f.presenter.OnStationSelected(jazzFM)
	f.sched.Flush()
	f.presenter.OnStationSelected(rockHits)
	f.sched.Flush()

	assert.Eventually(t, func() bool {
		return string(f.view.snapshot().artwork) == "rock"
	}, time.Second, 5*time.Millisecond)

	// Let the slow download for the previous station finish
	close(gate)
	assert.Eventually(t, func() bool {
		return f.artwork.finished.Load() == 4
	}, time.Second, 5*time.Millisecond)

	v := f.view.snapshot()
	assert.Equal(t, "rock", string(v.artwork))
	assert.Equal(t, "jazz", string(v.stationArtwork["a"]), "cards still get their image")
}

func TestPresenter_PlayPause(t *testing.T) {
	f := newPresenterFixture(t, nil)

	// Nothing selected yet
	f.presenter.OnPlayPauseClicked()
	f.sched.Flush()
	assert.Empty(t, f.sources.Sources())

	f.presenter.OnStationSelected(jazzFM)
	f.sched.Flush()

	f.presenter.OnPlayPauseClicked()
	f.sched.Flush()
	assert.Equal(t, domain.StatePaused, f.view.snapshot().state)

	f.presenter.OnPlayPauseClicked()
	f.sched.Flush()
	assert.Equal(t, domain.StatePlaying, f.view.snapshot().state)
}

func TestPresenter_PlayRetriesAfterFailure(t *testing.T) {
	f := newPresenterFixture(t, nil)
	f.sources.SetFailLoad(true)

	f.presenter.OnStationSelected(jazzFM)
	f.sched.Flush()

	v := f.view.snapshot()
	assert.Equal(t, domain.StateIdle, v.state)
	require.Len(t, v.notifications, 1)
	assert.Contains(t, v.notifications[0], "Playback Error")

	f.sources.SetFailLoad(false)
	f.presenter.OnPlayPauseClicked()
	f.sched.Flush()

	assert.Equal(t, domain.StatePlaying, f.view.snapshot().state)
	assert.Len(t, f.sources.Sources(), 2)
}

func TestPresenter_Notifications(t *testing.T) {
	f := newPresenterFixture(t, nil)
	f.sources.SetBlockPlay(true)

	f.presenter.OnStationSelected(jazzFM)
	f.sched.Flush()

	v := f.view.snapshot()
	assert.Equal(t, domain.StatePaused, v.state)
	require.Len(t, v.notifications, 1)
	assert.Contains(t, v.notifications[0], "Playback Blocked")

	f.bus.Publish(domain.NewPlaybackErroredEvent(rockHits, domain.NewMediaLoadError(rockHits.StreamURL, 404, nil)))
	v = f.view.snapshot()
	require.Len(t, v.notifications, 2)
	assert.Contains(t, v.notifications[1], "HTTP 404")

	f.bus.Publish(domain.NewPipelineFaultEvent("render snapshot", domain.ErrGraphDisposed))
	assert.Len(t, f.view.snapshot().notifications, 3)
}

func TestPresenter_Search(t *testing.T) {
	f := newPresenterFixture(t, nil)

	f.presenter.OnSearchChanged("rock")

	v := f.view.snapshot()
	assert.Equal(t, []domain.Station{rockHits}, v.stations)
	assert.Equal(t, []string{"Rock Hits", "Rock"}, v.suggestions)

	f.presenter.OnSearchChanged("")
	assert.Len(t, f.view.snapshot().stations, 2)
}

func TestPresenter_NextPrevious(t *testing.T) {
	f := newPresenterFixture(t, nil)

	f.presenter.OnNextStation()
	f.sched.Flush()
	assert.Equal(t, "a", f.presenter.Current().ID, "starts from the first station")

	f.presenter.OnNextStation()
	f.sched.Flush()
	assert.Equal(t, "b", f.presenter.Current().ID)

	f.presenter.OnPreviousStation()
	f.sched.Flush()
	assert.Equal(t, "a", f.presenter.Current().ID)

	f.presenter.OnSearchChanged("nothing")
	f.presenter.OnNextStation()
	assert.Zero(t, f.sched.Pending(), "empty view has no neighbor")
}

func TestPresenter_PlayFirstStation(t *testing.T) {
	f := newPresenterFixture(t, nil)

	f.presenter.OnSearchChanged("rock")
	f.presenter.PlayFirstStation()
	f.sched.Flush()

	assert.Equal(t, "b", f.ctrl.CurrentStation().ID)
}

func TestPresenter_Volume(t *testing.T) {
	f := newPresenterFixture(t, nil)

	f.presenter.OnVolumeChanged(0.4)
	f.sched.Flush()

	assert.Equal(t, 0.4, f.ctrl.Volume())
	assert.Equal(t, 0.4, f.prefs.GetVolume())
	assert.Equal(t, 0.4, f.view.snapshot().volume)

	f.presenter.OnVolumeChanged(1.5)
	assert.Equal(t, 0.4, f.prefs.GetVolume())
	assert.Len(t, f.view.snapshot().notifications, 1)
}

func TestPresenter_ThemeToggle(t *testing.T) {
	f := newPresenterFixture(t, nil)

	f.presenter.OnThemeToggled()
	assert.Equal(t, domain.ThemeLight, f.view.snapshot().theme)

	f.presenter.OnThemeToggled()
	assert.Equal(t, domain.ThemeDark, f.view.snapshot().theme)
}

func TestPresenter_Shutdown(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreFyneGoroutines()...)

	gate := make(chan struct{})
	f := newPresenterFixture(t, map[string]chan struct{}{jazzFM.ImageURL: gate})

	// The download for the first card is still blocked
	f.presenter.Shutdown()
	f.presenter.Shutdown()

	assert.False(t, f.bus.HasSubscribers(domain.EventStateChanged))

	f.bus.Publish(domain.NewThemeChangedEvent(domain.ThemeLight))
	assert.Equal(t, domain.ThemeDark, f.view.snapshot().theme, "no updates after shutdown")
}

func TestPresenter_NoDownloadsAfterShutdown(t *testing.T) {
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreFyneGoroutines()...)

	f := newPresenterFixture(t, nil)
	require.Eventually(t, func() bool {
		return f.artwork.finished.Load() == 2
	}, time.Second, 5*time.Millisecond)

	// Late requests racing with Shutdown
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f.presenter.loadArtwork(jazzFM.ImageURL, func([]byte) {})
			}
		}()
	}
	f.presenter.Shutdown()
	wg.Wait()

	before := f.artwork.finished.Load()
	var applied atomic.Bool
	f.presenter.loadArtwork(rockHits.ImageURL, func([]byte) { applied.Store(true) })
	f.presenter.wg.Wait()

	assert.Equal(t, before, f.artwork.finished.Load(), "no fetch starts after shutdown")
	assert.False(t, applied.Load())
}
