package replay

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nstehr/relic/relic-core/memory"
	"github.com/nstehr/relic/relic-core/model"
)

func TestRecorderRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	rec, err := NewRecorder(dir, "player_0")
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(rec.Path()), "player_0-"+rec.Episode()) {
		t.Errorf("path %q does not carry player and episode", rec.Path())
	}

	entries := []Entry{
		{Player: "player_0", Step: 0, Strategy: "relic", Actions: model.NoOps(2), Fired: []string{"", ""}},
		{
			Player:   "player_0",
			Step:     1,
			Strategy: "relic",
			Actions:  []model.Action{model.Move(model.Right), {}},
			Fired:    []string{"approach-relic", ""},
			Relics:   []memory.Relic{{ID: 2, Pos: model.Position{X: 6, Y: 0}}},
			Events:   []string{"relic_discovered"},
		},
	}
	for _, e := range entries {
		if err := rec.Write(e); err != nil {
			t.Fatalf("Write step %d: %v", e.Step, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rec.Write(entries[0]); err == nil {
		t.Error("Write after Close should fail")
	}

	got, err := ReadAll(rec.Path())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.Episode != rec.Episode() {
			t.Errorf("step %d episode = %q, want %q", e.Step, e.Episode, rec.Episode())
		}
	}
	if got[1].Actions[0] != model.Move(model.Right) {
		t.Errorf("step 1 action = %v", got[1].Actions[0])
	}
	if len(got[1].Relics) != 1 || got[1].Relics[0].Pos != (model.Position{X: 6, Y: 0}) {
		t.Errorf("step 1 relics = %+v", got[1].Relics)
	}
	if len(got[1].Events) != 1 || got[1].Events[0] != "relic_discovered" {
		t.Errorf("step 1 events = %v", got[1].Events)
	}
}

func TestRecorderEpisodesAreDistinct(t *testing.T) {
	dir := t.TempDir()
	a, err := NewRecorder(dir, "player_1")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := NewRecorder(dir, "player_1")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if a.Episode() == b.Episode() || a.Path() == b.Path() {
		t.Errorf("two recorders share episode %q", a.Episode())
	}
}
