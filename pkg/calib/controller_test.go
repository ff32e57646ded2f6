package calib

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/itohio/govcc/pkg/bandgap"
	"github.com/itohio/govcc/pkg/keys"
	"github.com/itohio/govcc/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

// scriptKeys feeds a fixed sequence of key events to the controller,
// advancing the fake clock by the decode timeout on every call the way
// a real idle decode would. An exhausted script fails the test: every
// script must end with the controller exiting.
type scriptKeys struct {
	t      *testing.T
	clock  *fakeClock
	events []keys.Key
	next   int
}

func (s *scriptKeys) Decode(timeout time.Duration) keys.Key {
	s.clock.t = s.clock.t.Add(timeout)
	require.Less(s.t, s.next, len(s.events), "controller did not exit before the key script ran out")
	k := s.events[s.next]
	s.next++
	return k
}

// spyStore records persistence traffic.
type spyStore struct {
	store.MemStore
	loads    int
	saves    int
	saved    []uint16
	failSave bool
}

func (s *spyStore) Load() (store.Record, error) {
	s.loads++
	return s.MemStore.Load()
}

func (s *spyStore) Save(rec store.Record) error {
	s.saves++
	s.saved = append(s.saved, rec.RefMv)
	if s.failSave {
		return errors.New("write failed")
	}
	return s.MemStore.Save(rec)
}

func newTestController(t *testing.T, st store.Store, script ...keys.Key) (*Controller, *bandgap.Meter, *strings.Builder) {
	clock := newFakeClock()
	kr := &scriptKeys{t: t, clock: clock, events: script}
	m := bandgap.NewWithRef(bandgap.SamplerFunc(func() uint32 { return 500 }), st, bandgap.NominalRefMv)
	var out strings.Builder
	c := New(kr, m, &out)
	c.nowFn = clock.now
	return c, m, &out
}

func TestRun_SpaceEntersTuneWithoutPersistence(t *testing.T) {
	st := &spyStore{}
	// Space enters tuning (proved by the arrow key taking effect),
	// Escape backs out to the menu, Escape again exits.
	c, m, _ := newTestController(t, st,
		keys.KeySpace, keys.KeyUp, keys.KeyEscape, keys.KeyEscape)

	c.Run()

	assert.Equal(t, uint16(1101), m.Ref())
	assert.Zero(t, st.saves, "entering the calibration display must not persist anything")
}

func TestRun_TuneAdjustments(t *testing.T) {
	tests := []struct {
		name    string
		script  []keys.Key
		wantRef uint16
		wantOut []string
	}{
		{
			name:    "up arrow",
			script:  []keys.Key{keys.KeySpace, keys.KeyUp, keys.KeyEscape, keys.KeyEscape},
			wantRef: 1101,
			wantOut: []string{"[up]"},
		},
		{
			name:    "down arrow",
			script:  []keys.Key{keys.KeySpace, keys.KeyDown, keys.KeyEscape, keys.KeyEscape},
			wantRef: 1099,
			wantOut: []string{"[down]"},
		},
		{
			name:    "vi keys",
			script:  []keys.Key{keys.KeySpace, keys.KeyK, keys.KeyK, keys.KeyJ, keys.KeyEscape, keys.KeyEscape},
			wantRef: 1101,
			wantOut: []string{"[up]", "[down]"},
		},
		{
			name:    "adjustment keys ignored in menu",
			script:  []keys.Key{keys.KeyUp, keys.KeyDown, keys.KeyEscape},
			wantRef: 1100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m, out := newTestController(t, &spyStore{}, tt.script...)
			c.Run()
			assert.Equal(t, tt.wantRef, m.Ref())
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestRun_SavePersistsCurrentRef(t *testing.T) {
	st := &spyStore{}
	// '2' from the menu saves the in-memory reference as-is and jumps
	// to tuning (proved by the arrow key taking effect).
	c, m, out := newTestController(t, st,
		keys.Key2, keys.KeyUp, keys.KeyEscape, keys.KeyEscape)

	c.Run()

	require.Equal(t, 1, st.saves)
	assert.Equal(t, []uint16{1100}, st.saved)
	assert.Equal(t, uint16(1101), m.Ref())
	assert.Contains(t, out.String(), "Saved bandgap value.")
}

func TestRun_LoadWithoutRecordStaysInMenu(t *testing.T) {
	st := &spyStore{}
	// '1' finds nothing; the session must stay in the menu, so the
	// immediately following Escape exits and the arrow never fires.
	c, m, out := newTestController(t, st,
		keys.Key1, keys.KeyUp, keys.KeyEscape)

	c.Run()

	assert.Equal(t, 1, st.loads)
	assert.Equal(t, uint16(1100), m.Ref(), "failed load must not mutate the reference")
	assert.Contains(t, out.String(), "No saved bandgap value found.")
}

func TestRun_LoadRestoresSavedRef(t *testing.T) {
	st := &spyStore{}
	require.NoError(t, st.MemStore.Save(store.NewRecord(1087)))

	c, m, out := newTestController(t, st,
		keys.Key1, keys.KeyEscape, keys.KeyEscape)

	c.Run()

	assert.Equal(t, uint16(1087), m.Ref())
	assert.Contains(t, out.String(), "Retrieved saved bandgap value.")
}

func TestRun_SaveFailureReportedAndStaysInMenu(t *testing.T) {
	st := &spyStore{failSave: true}
	c, m, out := newTestController(t, st,
		keys.Key2, keys.KeyUp, keys.KeyEscape)

	c.Run()

	assert.Equal(t, uint16(1100), m.Ref())
	assert.Contains(t, out.String(), "Failed to save bandgap value")
}

func TestRun_LiveDisplayWhileTuning(t *testing.T) {
	// Each decode advances virtual time by 100ms; after Space the idle
	// stretch crosses the 1s display deadline exactly once.
	script := []keys.Key{keys.KeySpace}
	for i := 0; i < 12; i++ {
		script = append(script, keys.NoKey)
	}
	script = append(script, keys.KeyEscape, keys.KeyEscape)

	c, _, out := newTestController(t, &spyStore{}, script...)
	c.Run()

	assert.Equal(t, 1, strings.Count(out.String(), "Vcc: 2252mV, BG ref: 1100mV"))
}

func TestRun_NoDisplayInMenu(t *testing.T) {
	script := make([]keys.Key, 0, 16)
	for i := 0; i < 15; i++ {
		script = append(script, keys.NoKey)
	}
	script = append(script, keys.KeyEscape)

	c, _, out := newTestController(t, &spyStore{}, script...)
	c.Run()

	assert.NotContains(t, out.String(), "Vcc:")
}

func TestRun_EscapeFromTuneReturnsToMenu(t *testing.T) {
	c, _, out := newTestController(t, &spyStore{},
		keys.KeySpace, keys.KeyEscape, keys.KeyEscape)

	c.Run()

	// Menu printed on entry and again when Escape drops out of tuning.
	assert.Equal(t, 2, strings.Count(out.String(), "== Bandgap calibration =="))
}

func TestRun_SpaceTogglesBackToMenu(t *testing.T) {
	c, _, out := newTestController(t, &spyStore{},
		keys.KeySpace, keys.KeySpace, keys.KeyEscape)

	c.Run()

	assert.Equal(t, 2, strings.Count(out.String(), "== Bandgap calibration =="))
}

func TestRun_UnboundKeysIgnored(t *testing.T) {
	c, m, _ := newTestController(t, &spyStore{},
		keys.Key(42), keys.NoKey, keys.KeyEscape)

	c.Run()
	assert.Equal(t, uint16(1100), m.Ref())
}
