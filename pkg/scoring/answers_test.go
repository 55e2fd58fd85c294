package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/abrezinsky/revista/pkg/scoring"
)

func TestAnswerSet_UnmarshalMixedValues(t *testing.T) {
	var set scoring.AnswerSet
	payload := `{"placa_delantera": true, "parabrisas": "good", "frenos": 12, "cinturones": null}`
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if a, ok := set.Get("placa_delantera"); !ok || !a.True() {
		t.Errorf("expected boolean true, got %v", a)
	}
	if a, _ := set.Get("parabrisas"); a.IsBool() || a.String() != "good" {
		t.Errorf("expected text good, got %v", a)
	}
	if a, _ := set.Get("frenos"); a.String() != "12" {
		t.Errorf("expected numeric id as string, got %q", a.String())
	}
	if a, ok := set.Get("cinturones"); !ok || a.String() != "" {
		t.Errorf("expected null to decode as empty answer, got %q", a.String())
	}
}

func TestAnswerSet_UnmarshalRejectsObjects(t *testing.T) {
	var set scoring.AnswerSet
	if err := json.Unmarshal([]byte(`{"x": {"nested": 1}}`), &set); err == nil {
		t.Error("expected error for nested object answer")
	}
}

func TestAnswerSet_MarshalKeepsTypes(t *testing.T) {
	set := scoring.AnswerSet{}.ApplyAll(
		scoring.Set("a", scoring.Bool(false)),
		scoring.Set("b", scoring.Text("11")),
	)
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"a":false,"b":"11"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	empty, _ := json.Marshal(scoring.AnswerSet{})
	if string(empty) != "{}" {
		t.Errorf("expected {} for empty set, got %s", empty)
	}
}

func TestAnswerSet_ApplyIsImmutable(t *testing.T) {
	original := scoring.AnswerSet{}.Apply(scoring.Set("a", scoring.Bool(true)))
	next := original.Apply(scoring.Set("a", scoring.Bool(false)))

	if a, _ := original.Get("a"); !a.True() {
		t.Error("apply modified the original set")
	}
	if a, _ := next.Get("a"); a.True() {
		t.Error("apply did not update the new set")
	}

	cleared := next.Apply(scoring.Clear("a"))
	if _, ok := cleared.Get("a"); ok {
		t.Error("clear did not remove key")
	}
	if next.Len() != 1 {
		t.Error("clear modified the previous set")
	}

	reset := next.Apply(scoring.Reset())
	if reset.Len() != 0 {
		t.Errorf("reset left %d answers", reset.Len())
	}
}

func TestAnswerSet_ApplyIgnoresInvalidUpdates(t *testing.T) {
	set := scoring.AnswerSet{}.Apply(scoring.Set("a", scoring.Text("x")))
	if got := set.Apply(scoring.Update{Op: "bogus", Key: "a"}); got.Len() != 1 {
		t.Error("unknown op changed the set")
	}
	if got := set.Apply(scoring.Set("", scoring.Text("y"))); got.Len() != 1 {
		t.Error("keyless set changed the set")
	}
	if got := set.Apply(scoring.Clear("missing")); got.Len() != 1 {
		t.Error("clearing a missing key changed the set")
	}
}

func TestUpdate_UnmarshalJSON(t *testing.T) {
	var updates []scoring.Update
	payload := `[{"op":"set","key":"placa_trasera","value":true},{"op":"set","key":"frenos","value":"13"},{"op":"clear","key":"x"}]`
	if err := json.Unmarshal([]byte(payload), &updates); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	set := scoring.AnswerSet{}.ApplyAll(updates...)
	if a, _ := set.Get("placa_trasera"); !a.True() {
		t.Error("expected placa_trasera true")
	}
	if a, _ := set.Get("frenos"); a.String() != "13" {
		t.Errorf("expected frenos 13, got %q", a.String())
	}
	if set.Keys()[0] != "frenos" {
		t.Errorf("expected sorted keys, got %v", set.Keys())
	}
}
