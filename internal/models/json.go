package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// The dataset format is JSON with meaningful member order at two levels:
// dialogue keys at the top and the query/resolvedQuery/retrieved_evidence/
// labels sequence inside processed turns. encoding/json maps lose the
// former, so the container types stream tokens through json.Decoder and
// write their objects by hand.

var metricPrefixes = []string{"ndcg@", "precision@", "recall@"}

// IsMetricKey reports whether key names a computed metric field such as
// "ndcg@3".
func IsMetricKey(key string) bool {
	for _, p := range metricPrefixes {
		if rest, ok := strings.CutPrefix(key, p); ok {
			if _, err := strconv.Atoi(rest); err == nil {
				return true
			}
		}
	}
	return false
}

// sortedMetricKeys orders metric keys the way the batch engine emits them:
// ndcg, then precision, then recall, each with k ascending.
func sortedMetricKeys(metrics map[string]float64) []string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	rank := func(key string) (int, int) {
		for i, p := range metricPrefixes {
			if rest, ok := strings.CutPrefix(key, p); ok {
				if n, err := strconv.Atoi(rest); err == nil {
					return i, n
				}
			}
		}
		return len(metricPrefixes), 0
	}
	sort.Slice(keys, func(i, j int) bool {
		mi, ki := rank(keys[i])
		mj, kj := rank(keys[j])
		if mi != mj {
			return mi < mj
		}
		if ki != kj {
			return ki < kj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// objectMembers walks a JSON object and yields each member's key and raw
// value in document order.
func objectMembers(data []byte, visit func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := visit(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

type objectWriter struct {
	buf   bytes.Buffer
	first bool
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{first: true}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) raw(key string, value []byte) {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(value)
}

func (w *objectWriter) field(key string, value any) error {
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	w.raw(key, v)
	return nil
}

func (w *objectWriter) bytes() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

// UnmarshalJSON accepts either a bare string id or an object with a
// passage_id member, keeping the raw form for faithful output.
func (r *EvidenceRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	r.Raw = append([]byte(nil), trimmed...)
	r.PassageID = ""
	if len(trimmed) == 0 {
		return fmt.Errorf("empty evidence entry")
	}
	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &r.PassageID)
	case '{':
		var obj struct {
			PassageID string `json:"passage_id"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		r.PassageID = obj.PassageID
		return nil
	default:
		// Tolerated: entry contributes nothing to the gold set.
		return nil
	}
}

func (r EvidenceRef) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return r.Raw, nil
	}
	return json.Marshal(r.PassageID)
}

func (l *Label) UnmarshalJSON(data []byte) error {
	*l = Label{}
	return objectMembers(data, func(key string, raw json.RawMessage) error {
		if IsMetricKey(key) {
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("metric field %s: %w", key, err)
			}
			l.SetMetric(key, v)
			return nil
		}
		switch key {
		case "responseType":
			if err := json.Unmarshal(raw, &l.ResponseType); err != nil {
				return fmt.Errorf("responseType: %w", err)
			}
		case "evidence":
			l.Evidence = EvidenceList{}
			if err := json.Unmarshal(raw, &l.Evidence); err != nil {
				return fmt.Errorf("evidence: %w", err)
			}
		}
		l.fields = append(l.fields, Field{Name: key, Value: append([]byte(nil), raw...)})
		return nil
	})
}

func (l *Label) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	seen := make(map[string]bool, len(l.fields))
	for _, f := range l.fields {
		seen[f.Name] = true
		w.raw(f.Name, f.Value)
	}
	if !seen["responseType"] && l.ResponseType != "" {
		if err := w.field("responseType", l.ResponseType); err != nil {
			return nil, err
		}
	}
	if !seen["evidence"] && l.Evidence != nil {
		if err := w.field("evidence", l.Evidence); err != nil {
			return nil, err
		}
	}
	for _, key := range sortedMetricKeys(l.Metrics) {
		if err := w.field(key, l.Metrics[key]); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	*t = Turn{}
	return objectMembers(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "context":
			return json.Unmarshal(raw, &t.Context)
		case "query":
			return json.Unmarshal(raw, &t.Query)
		case "resolvedQuery":
			return json.Unmarshal(raw, &t.ResolvedQuery)
		case "retrieved_evidence":
			return json.Unmarshal(raw, &t.RetrievedEvidence)
		case "labels":
			return json.Unmarshal(raw, &t.Labels)
		default:
			t.extra = append(t.extra, Field{Name: key, Value: append([]byte(nil), raw...)})
			return nil
		}
	})
}

// MarshalJSON emits the turn in the fixed field order downstream consumers
// expect: context, query, resolvedQuery, retrieved_evidence, labels, then
// any fields we do not model.
func (t *Turn) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if t.Context != nil {
		if err := w.field("context", t.Context); err != nil {
			return nil, err
		}
	}
	if t.Query != nil {
		if err := w.field("query", *t.Query); err != nil {
			return nil, err
		}
	}
	if t.ResolvedQuery != nil {
		if err := w.field("resolvedQuery", *t.ResolvedQuery); err != nil {
			return nil, err
		}
	}
	if t.RetrievedEvidence != nil {
		if err := w.field("retrieved_evidence", t.RetrievedEvidence); err != nil {
			return nil, err
		}
	}
	if t.Labels != nil {
		if err := w.field("labels", t.Labels); err != nil {
			return nil, err
		}
	}
	for _, f := range t.extra {
		w.raw(f.Name, f.Value)
	}
	return w.bytes(), nil
}

func (d *Dialogue) UnmarshalJSON(data []byte) error {
	*d = Dialogue{}
	return objectMembers(data, func(key string, raw json.RawMessage) error {
		if key == "turns" {
			d.Turns = []*Turn{}
			if err := json.Unmarshal(raw, &d.Turns); err != nil {
				return fmt.Errorf("turns: %w", err)
			}
			d.fields = append(d.fields, Field{Name: "turns"})
			return nil
		}
		d.fields = append(d.fields, Field{Name: key, Value: append([]byte(nil), raw...)})
		return nil
	})
}

func (d *Dialogue) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	wroteTurns := false
	for _, f := range d.fields {
		if f.Name == "turns" {
			if err := w.field("turns", d.Turns); err != nil {
				return nil, err
			}
			wroteTurns = true
			continue
		}
		w.raw(f.Name, f.Value)
	}
	if !wroteTurns && d.Turns != nil {
		if err := w.field("turns", d.Turns); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

func (d *Dataset) UnmarshalJSON(data []byte) error {
	*d = Dataset{Dialogues: make(map[string]*Dialogue)}
	return objectMembers(data, func(key string, raw json.RawMessage) error {
		dlg := &Dialogue{}
		if err := json.Unmarshal(raw, dlg); err != nil {
			return fmt.Errorf("dialogue %s: %w", key, err)
		}
		d.Put(key, dlg)
		return nil
	})
}

func (d *Dataset) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	for _, id := range d.IDs {
		if err := w.field(id, d.Dialogues[id]); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}
