package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tacticast/viewpoint/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "viewpoint.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSummary(hash string) model.TacticSummary {
	return model.TacticSummary{
		Hash:        hash,
		TacticID:    "tac_1",
		Title:       "4-3-3 press",
		PitchLength: 105,
		PitchWidth:  68,
		NumPlayers:  2,
		NumFrames:   2,
	}
}

func sampleRecs() map[string][]model.PlayerFocusRecommendation {
	return map[string][]model.PlayerFocusRecommendation{
		"A-7": {
			{
				PlayerID: "A-7", FrameIdx: 0, TRel: 0,
				Primary:      model.FocusTarget{Type: model.FocusPlayer, Anchor: model.Vec2{X: 60, Y: 40}, TargetPlayerID: "B-6", Tag: "press"},
				PrimaryScore: 2.4,
				Rationale:    []string{"role_prior(RW)=+0.20", "opp_d=3.00"},
				TopK: []model.ScoredEvent{
					{Name: "OPP_PRESSURE", Score: 2.4, Focus: model.FocusTarget{Type: model.FocusPlayer, Anchor: model.Vec2{X: 60, Y: 40}, TargetPlayerID: "B-6", Tag: "press"}},
					{Name: "GOAL", Score: 1.1, Focus: model.FocusTarget{Type: model.FocusGoal, Anchor: model.Vec2{X: 105, Y: 34}, Tag: "goal"}},
				},
			},
			{
				PlayerID: "A-7", FrameIdx: 1, TRel: 0.5,
				Primary:      model.FocusTarget{Type: model.FocusBall, Anchor: model.Vec2{X: 52, Y: 34}, Tag: "ball"},
				PrimaryScore: 0,
				Rationale:    []string{"fallback_ball"},
			},
		},
	}
}

const testHash = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

func TestTacticInsertAndLookup(t *testing.T) {
	db := openTestDB(t)

	exists, err := db.TacticExists(testHash)
	if err != nil {
		t.Fatalf("TacticExists: %v", err)
	}
	if exists {
		t.Fatal("tactic exists in empty database")
	}

	if err := db.InsertTactic(sampleSummary(testHash), []byte(`{"meta":{}}`)); err != nil {
		t.Fatalf("InsertTactic: %v", err)
	}

	got, err := db.GetTacticByPrefix("deadbeef")
	if err != nil {
		t.Fatalf("GetTacticByPrefix: %v", err)
	}
	if got == nil || got.TacticID != "tac_1" || got.NumFrames != 2 {
		t.Errorf("got %+v, want stored tactic", got)
	}
	if got.LoadedAt == "" {
		t.Error("LoadedAt not defaulted on insert")
	}
	if got.HasRun {
		t.Error("HasRun true before any run stored")
	}

	if missing, err := db.GetTacticByPrefix("ffff"); err != nil || missing != nil {
		t.Errorf("unknown prefix = (%v, %v), want (nil, nil)", missing, err)
	}

	source, err := db.GetTacticSource(testHash)
	if err != nil {
		t.Fatalf("GetTacticSource: %v", err)
	}
	if string(source) != `{"meta":{}}` {
		t.Errorf("source = %s", source)
	}
}

func TestRecommendationsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertTactic(sampleSummary(testHash), nil); err != nil {
		t.Fatalf("InsertTactic: %v", err)
	}

	want := sampleRecs()
	if err := db.InsertRecommendations(testHash, want); err != nil {
		t.Fatalf("InsertRecommendations: %v", err)
	}

	got, err := db.GetRecommendations(testHash)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	seq := got["A-7"]
	if len(seq) != 2 {
		t.Fatalf("got %d rows, want 2", len(seq))
	}
	if seq[0].Primary != want["A-7"][0].Primary {
		t.Errorf("primary = %+v, want %+v", seq[0].Primary, want["A-7"][0].Primary)
	}
	if !reflect.DeepEqual(seq[0].Rationale, want["A-7"][0].Rationale) {
		t.Errorf("rationale = %v, want %v", seq[0].Rationale, want["A-7"][0].Rationale)
	}
	if seq[1].PrimaryScore != 0 || seq[1].Primary.Type != model.FocusBall {
		t.Errorf("fallback row = %+v", seq[1])
	}

	cands, err := db.GetCandidates(testHash)
	if err != nil {
		t.Fatalf("GetCandidates: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidate rows, want 2", len(cands))
	}
	if cands[0].Rank != 0 || cands[0].Name != "OPP_PRESSURE" || cands[1].Rank != 1 {
		t.Errorf("candidate rows = %+v", cands)
	}

	summary, err := db.GetTacticByPrefix("deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if !summary.HasRun {
		t.Error("HasRun false after run stored")
	}
}

func TestInsertRecommendationsReplacesPreviousRun(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertTactic(sampleSummary(testHash), nil); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertRecommendations(testHash, sampleRecs()); err != nil {
		t.Fatal(err)
	}

	second := sampleRecs()
	second["A-7"] = second["A-7"][:1]
	if err := db.InsertRecommendations(testHash, second); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetRecommendations(testHash)
	if err != nil {
		t.Fatal(err)
	}
	if len(got["A-7"]) != 1 {
		t.Errorf("got %d rows after replace, want 1", len(got["A-7"]))
	}
}

func TestDropTacticCascades(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertTactic(sampleSummary(testHash), nil); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertRecommendations(testHash, sampleRecs()); err != nil {
		t.Fatal(err)
	}

	if err := db.DropTactic(testHash); err != nil {
		t.Fatalf("DropTactic: %v", err)
	}

	if got, err := db.GetTacticByPrefix("deadbeef"); err != nil || got != nil {
		t.Errorf("tactic still present after drop: (%v, %v)", got, err)
	}
	recs, err := db.GetRecommendations(testHash)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("recommendations survived drop: %v", recs)
	}
}

func TestListTactics(t *testing.T) {
	db := openTestDB(t)

	a := sampleSummary("aaaa000000000000000000000000000000000000000000000000000000000000")
	a.TacticID = "tac_a"
	a.LoadedAt = "2026-08-01T10:00:00Z"
	b := sampleSummary("bbbb000000000000000000000000000000000000000000000000000000000000")
	b.TacticID = "tac_b"
	b.LoadedAt = "2026-08-02T10:00:00Z"

	if err := db.InsertTactic(a, nil); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertTactic(b, nil); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListTactics()
	if err != nil {
		t.Fatalf("ListTactics: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d tactics, want 2", len(list))
	}
	// Most recently loaded first.
	if list[0].TacticID != "tac_b" || list[1].TacticID != "tac_a" {
		t.Errorf("order = [%s %s], want [tac_b tac_a]", list[0].TacticID, list[1].TacticID)
	}
}
