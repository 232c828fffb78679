package models

// ScoredDocument is a single ranked result returned by the search backend.
// Rank is 1-based and matches the document's position in the result list.
type ScoredDocument struct {
	PassageID   string  `json:"passage_id"`
	PassageText string  `json:"passage_text"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
}

// Field is a raw JSON member kept in its original position so that
// round-tripping a dataset does not drop or reorder data we do not model.
type Field struct {
	Name  string
	Value []byte
}

// EvidenceRef is one gold passage reference. The input format allows both a
// bare string id and an object carrying a passage_id; the original raw form
// is kept so output files reproduce the input shape.
type EvidenceRef struct {
	PassageID string
	Raw       []byte
}

// EvidenceList is the gold evidence of a label.
type EvidenceList []EvidenceRef

// GoldIDs collapses the evidence into a set of passage identifiers.
// Duplicates and malformed entries without an id are dropped.
func (e EvidenceList) GoldIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e))
	for _, ref := range e {
		if ref.PassageID != "" {
			ids[ref.PassageID] = struct{}{}
		}
	}
	return ids
}

// Label is a gold-relevance judgment attached to a turn. Computed metric
// values are kept separately from the label's own fields and merged into the
// JSON object on marshal; pre-existing unrelated fields are never touched.
type Label struct {
	ResponseType string
	Evidence     EvidenceList
	Metrics      map[string]float64

	fields []Field // original member order, metric keys excluded
}

// HasEvidence reports whether the label carried an evidence field,
// including an empty one.
func (l *Label) HasEvidence() bool {
	return l.Evidence != nil
}

// SetMetric records a computed metric value under a "{metric}@{k}" key.
func (l *Label) SetMetric(name string, value float64) {
	if l.Metrics == nil {
		l.Metrics = make(map[string]float64)
	}
	l.Metrics[name] = value
}

// MetricValue looks up a computed metric by its "{metric}@{k}" key.
func (l *Label) MetricValue(name string) (float64, bool) {
	v, ok := l.Metrics[name]
	return v, ok
}

// Turn is one exchange of a dialogue. Optional fields are pointers or nil
// slices so that presence is explicit rather than inferred from zero values.
type Turn struct {
	Context           []string
	Query             *string
	ResolvedQuery     *string
	RetrievedEvidence []ScoredDocument
	Labels            []*Label

	extra []Field
}

// QueryByKey resolves the configured query key against the turn's fields.
// The second return value reports presence, mirroring the driver's
// "query key absent means nothing to do" contract.
func (t *Turn) QueryByKey(key string) (string, bool) {
	switch key {
	case "query":
		if t.Query != nil {
			return *t.Query, true
		}
	case "resolvedQuery":
		if t.ResolvedQuery != nil {
			return *t.ResolvedQuery, true
		}
	}
	return "", false
}

// Dialogue is an ordered sequence of turns plus whatever sibling fields the
// dataset carries alongside them.
type Dialogue struct {
	Turns []*Turn

	fields []Field // original member order; "turns" marks the turns position
}

// HasTurns reports whether the dialogue carried a turns field.
func (d *Dialogue) HasTurns() bool {
	return d.Turns != nil
}

// Dataset maps dialogue identifiers to dialogues, preserving the key order
// of the input file so the transformed artifact diffs cleanly against it.
type Dataset struct {
	IDs       []string
	Dialogues map[string]*Dialogue
}

// Get returns the dialogue stored under id.
func (d *Dataset) Get(id string) (*Dialogue, bool) {
	dlg, ok := d.Dialogues[id]
	return dlg, ok
}

// Put stores a dialogue, appending the id to the key order when new.
func (d *Dataset) Put(id string, dlg *Dialogue) {
	if d.Dialogues == nil {
		d.Dialogues = make(map[string]*Dialogue)
	}
	if _, ok := d.Dialogues[id]; !ok {
		d.IDs = append(d.IDs, id)
	}
	d.Dialogues[id] = dlg
}

// Len returns the number of dialogues.
func (d *Dataset) Len() int {
	return len(d.IDs)
}

// SummaryReport maps "{agg}_{metric}@{k}" keys (agg one of avg, max, min,
// std, count) to values; the overall report also carries num_queries.
type SummaryReport map[string]float64

// StringPtr is a helper for building optional turn fields.
func StringPtr(s string) *string { return &s }
