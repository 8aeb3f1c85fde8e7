package tactic

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tacticast/viewpoint/internal/model"
)

const singleTactic = `{
  "meta": {
    "tactic_id": "tac_1",
    "title": "4-3-3 press",
    "pitch": {"length": 105, "width": 68},
    "teams": {"A": {"name": "Home", "color": "#ff0000"}, "B": {"name": "Away", "color": "#0000ff"}},
    "players": [
      {"id": "A-7", "team": "A", "label": "7", "role": "RW"},
      {"id": "B-6", "team": "B", "label": "6", "role": "CDM"}
    ]
  },
  "frames": [
    {"id": "k1", "player_pos": {"A-7": [40, 30], "B-6": [60, 40]}, "ball": {"x": 50, "y": 34}},
    {"id": "k2", "player_pos": {"A-7": [44, 32]}, "ball": {"x": 52, "y": 34, "owner_id": "A-7"}}
  ]
}`

func tacticList() string {
	second := strings.Replace(singleTactic, `"tactic_id": "tac_1"`, `"tactic_id": "tac_2"`, 1)
	return "[" + singleTactic + "," + second + "]"
}

func TestSelectSingleObject(t *testing.T) {
	got, err := Select([]byte(singleTactic), "", 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got.Meta) == 0 || len(got.Frames) == 0 {
		t.Error("selected tactic missing meta or frames")
	}
}

func TestSelectListByID(t *testing.T) {
	got, err := Select([]byte(tacticList()), "tac_2", 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	meta, err := ParseMeta(got.Meta)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}
	if meta.TacticID != "tac_2" {
		t.Errorf("tactic id = %q, want tac_2", meta.TacticID)
	}

	if _, err := Select([]byte(tacticList()), "tac_missing", 0); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSelectListByIndex(t *testing.T) {
	got, err := Select([]byte(tacticList()), "", 1)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	meta, err := ParseMeta(got.Meta)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}
	if meta.TacticID != "tac_2" {
		t.Errorf("tactic id = %q, want tac_2", meta.TacticID)
	}

	if _, err := Select([]byte(tacticList()), "", 5); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("expected out-of-range error, got %v", err)
	}
}

func TestSelectErrors(t *testing.T) {
	if _, err := Select([]byte("[]"), "", 0); err == nil || !strings.Contains(err.Error(), "empty list") {
		t.Errorf("expected empty-list error, got %v", err)
	}
	if _, err := Select([]byte(`"nope"`), "", 0); err == nil || !strings.Contains(err.Error(), "must be an object") {
		t.Errorf("expected shape error, got %v", err)
	}
}

func TestLoadHashesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tactic.json")
	if err := os.WriteFile(path, []byte(singleTactic), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := Load(path, "", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := Load(path, "", 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.Hash != second.Hash || len(first.Hash) != 64 {
		t.Errorf("hashes %q / %q, want stable sha256 hex", first.Hash, second.Hash)
	}
}

func TestLoadRejectsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"meta": {"tactic_id": "x"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, "", 0); err == nil || !strings.Contains(err.Error(), "frames") {
		t.Errorf("expected missing-frames error, got %v", err)
	}
}

func TestParseMeta(t *testing.T) {
	got, err := Select([]byte(singleTactic), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := ParseMeta(got.Meta)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}

	if meta.Pitch != (model.Pitch{Length: 105, Width: 68}) {
		t.Errorf("pitch = %+v", meta.Pitch)
	}
	if meta.Teams[model.TeamA].Name != "Home" {
		t.Errorf("team A = %+v", meta.Teams[model.TeamA])
	}
	if p := meta.Players["A-7"]; p.Team != model.TeamA || p.Role != "RW" {
		t.Errorf("player A-7 = %+v", p)
	}
}

func TestParseMetaRejectsBadPitch(t *testing.T) {
	raw := []byte(`{"tactic_id": "x", "pitch": {"length": 0, "width": 68}}`)
	if _, err := ParseMeta(raw); err == nil || !strings.Contains(err.Error(), "pitch") {
		t.Errorf("expected pitch error, got %v", err)
	}
}

func TestParseRawFramesPreservesKeyOrder(t *testing.T) {
	raw := []byte(`[
		{"id": "k1", "player_pos": {"B-6": [60, 40], "A-7": [40, 30]}, "ball": {"x": 50, "y": 34}}
	]`)
	frames, err := ParseRawFrames(raw)
	if err != nil {
		t.Fatalf("ParseRawFrames: %v", err)
	}
	if !reflect.DeepEqual(frames[0].PlayerOrder, []string{"B-6", "A-7"}) {
		t.Errorf("player order = %v, want authored [B-6 A-7]", frames[0].PlayerOrder)
	}
}

func TestParseRawFramesSkipsMalformedPairs(t *testing.T) {
	raw := []byte(`[
		{"id": "k1", "player_pos": {"A-7": [40, 30], "A-8": [1], "A-9": "oops"}, "ball": {"x": 50, "y": 34}}
	]`)
	frames, err := ParseRawFrames(raw)
	if err != nil {
		t.Fatalf("ParseRawFrames: %v", err)
	}
	f := frames[0]
	if len(f.PlayerPos) != 1 {
		t.Errorf("player_pos = %v, want only the valid A-7 pair", f.PlayerPos)
	}
	if !reflect.DeepEqual(f.PlayerOrder, []string{"A-7"}) {
		t.Errorf("player order = %v, want [A-7]", f.PlayerOrder)
	}
}

func TestParseRawFramesBallAndOwner(t *testing.T) {
	got, err := Select([]byte(singleTactic), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := ParseRawFrames(got.Frames)
	if err != nil {
		t.Fatalf("ParseRawFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[1].Ball.OwnerID != "A-7" {
		t.Errorf("frame 1 ball owner = %q, want A-7", frames[1].Ball.OwnerID)
	}
	if frames[0].Ball.X == nil || *frames[0].Ball.X != 50 {
		t.Errorf("frame 0 ball x = %v, want 50", frames[0].Ball.X)
	}
}

func TestParseRawFramesEmptyList(t *testing.T) {
	if _, err := ParseRawFrames([]byte("[]")); err == nil || !strings.Contains(err.Error(), "no frames") {
		t.Errorf("expected no-frames error, got %v", err)
	}
}
