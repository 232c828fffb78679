package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEvidenceList_MixedForms(t *testing.T) {
	input := `{"evidence": ["p1", {"passage_id": "p2"}, {"passage_id": "p1"}, 42]}`

	var label Label
	if err := json.Unmarshal([]byte(input), &label); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !label.HasEvidence() {
		t.Fatal("expected evidence to be present")
	}

	gold := label.Evidence.GoldIDs()
	if len(gold) != 2 {
		t.Errorf("expected 2 unique gold ids, got %d", len(gold))
	}
	for _, id := range []string{"p1", "p2"} {
		if _, ok := gold[id]; !ok {
			t.Errorf("expected gold id %s", id)
		}
	}
}

func TestLabel_EmptyEvidencePresent(t *testing.T) {
	var label Label
	if err := json.Unmarshal([]byte(`{"evidence": []}`), &label); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !label.HasEvidence() {
		t.Error("empty evidence array should still count as present")
	}

	var bare Label
	if err := json.Unmarshal([]byte(`{"responseType": "PTKB"}`), &bare); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if bare.HasEvidence() {
		t.Error("label without evidence field should report absent")
	}
}

func TestLabel_MetricMergePreservesFields(t *testing.T) {
	input := `{"responseType":"PTKB","evidence":["p1"],"annotator":"a-07"}`

	var label Label
	if err := json.Unmarshal([]byte(input), &label); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	label.SetMetric("ndcg@1", 0.5)
	label.SetMetric("precision@1", 1.0)
	label.SetMetric("recall@1", 1.0)

	out, err := json.Marshal(&label)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var round map[string]json.RawMessage
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("round-trip unmarshal failed: %v", err)
	}

	for _, key := range []string{"responseType", "evidence", "annotator", "ndcg@1", "precision@1", "recall@1"} {
		if _, ok := round[key]; !ok {
			t.Errorf("expected key %q in marshaled label, got %s", key, out)
		}
	}
	if string(round["annotator"]) != `"a-07"` {
		t.Errorf("unrelated field was modified: %s", round["annotator"])
	}
}

func TestLabel_ReparsesComputedMetrics(t *testing.T) {
	input := `{"evidence":["p1"],"ndcg@3":0.6309,"recall@3":1.0}`

	var label Label
	if err := json.Unmarshal([]byte(input), &label); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if v, ok := label.MetricValue("ndcg@3"); !ok || v != 0.6309 {
		t.Errorf("expected ndcg@3=0.6309, got %v (present=%v)", v, ok)
	}
	if v, ok := label.MetricValue("recall@3"); !ok || v != 1.0 {
		t.Errorf("expected recall@3=1.0, got %v (present=%v)", v, ok)
	}
	if _, ok := label.MetricValue("precision@3"); ok {
		t.Error("precision@3 should be absent")
	}
}

func TestTurn_MarshalFieldOrder(t *testing.T) {
	turn := &Turn{
		Query:         StringPtr("what is cheese"),
		ResolvedQuery: StringPtr("what is cheese made of"),
		RetrievedEvidence: []ScoredDocument{
			{PassageID: "p1", PassageText: "cheese is...", Rank: 1, Score: 3.2},
		},
		Labels: []*Label{{Evidence: EvidenceList{{PassageID: "p1"}}}},
	}

	out, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	s := string(out)
	order := []string{`"query"`, `"resolvedQuery"`, `"retrieved_evidence"`, `"labels"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("missing key %s in %s", key, s)
		}
		if idx < last {
			t.Errorf("key %s out of order in %s", key, s)
		}
		last = idx
	}
}

func TestTurn_RoundTripKeepsUnknownFields(t *testing.T) {
	input := `{"context":["hi"],"query":"q","speaker":"user"}`

	var turn Turn
	if err := json.Unmarshal([]byte(input), &turn); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	out, err := json.Marshal(&turn)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"speaker":"user"`) {
		t.Errorf("unknown turn field dropped: %s", out)
	}
}

func TestDataset_PreservesKeyOrder(t *testing.T) {
	input := `{"dlg_9":{"turns":[]},"dlg_1":{"turns":[]},"dlg_5":{"domain":"food","turns":[]}}`

	var ds Dataset
	if err := json.Unmarshal([]byte(input), &ds); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []string{"dlg_9", "dlg_1", "dlg_5"}
	if len(ds.IDs) != len(want) {
		t.Fatalf("expected %d dialogues, got %d", len(want), len(ds.IDs))
	}
	for i, id := range want {
		if ds.IDs[i] != id {
			t.Errorf("expected IDs[%d]=%s, got %s", i, id, ds.IDs[i])
		}
	}

	out, err := json.Marshal(&ds)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(out)
	if !(strings.Index(s, "dlg_9") < strings.Index(s, "dlg_1") &&
		strings.Index(s, "dlg_1") < strings.Index(s, "dlg_5")) {
		t.Errorf("dialogue key order not preserved: %s", s)
	}

	// Sibling fields next to turns survive in place.
	if !strings.Contains(s, `"domain":"food"`) {
		t.Errorf("dialogue sibling field dropped: %s", s)
	}
}

func TestDataset_RoundTripStructurallyEqual(t *testing.T) {
	input := `{
		"d1": {
			"turns": [
				{"context": ["a", "b"], "query": "b", "resolvedQuery": "b resolved",
				 "labels": [{"responseType": "answer", "evidence": ["p1", {"passage_id": "p2"}]}]}
			]
		}
	}`

	var ds Dataset
	if err := json.Unmarshal([]byte(input), &ds); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	out, err := json.Marshal(&ds)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var again Dataset
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("second unmarshal failed: %v", err)
	}

	dlg, ok := again.Get("d1")
	if !ok || len(dlg.Turns) != 1 {
		t.Fatal("dialogue lost in round trip")
	}
	turn := dlg.Turns[0]
	if turn.ResolvedQuery == nil || *turn.ResolvedQuery != "b resolved" {
		t.Error("resolvedQuery lost in round trip")
	}
	if len(turn.Labels) != 1 || len(turn.Labels[0].Evidence.GoldIDs()) != 2 {
		t.Error("label evidence lost in round trip")
	}
}

func TestTurn_QueryByKey(t *testing.T) {
	turn := &Turn{ResolvedQuery: StringPtr("resolved")}

	if q, ok := turn.QueryByKey("resolvedQuery"); !ok || q != "resolved" {
		t.Errorf("expected resolved query, got %q (present=%v)", q, ok)
	}
	if _, ok := turn.QueryByKey("query"); ok {
		t.Error("absent query key should report missing")
	}
	if _, ok := turn.QueryByKey("utterance"); ok {
		t.Error("unknown query key should report missing")
	}
}
