package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Entry is one named contribution to the score.
type Entry struct {
	Name  string
	Value float64
}

// Ledger is the ordered score breakdown. It accumulates named contributions
// in the order they were applied, so the serialized breakdown reads as an
// audit trail of the scoring pass. A Ledger is scoped to a single scoring
// call and is never shared.
type Ledger struct {
	entries []Entry
}

// Add records a contribution. Zero values are skipped so the breakdown only
// carries signals that actually fired.
func (l *Ledger) Add(name string, value float64) {
	if value == 0 || math.IsNaN(value) {
		return
	}
	l.entries = append(l.entries, Entry{Name: name, Value: value})
}

// Scale multiplies every recorded entry in place. Used for the timeframe
// multiplier so that entries stay consistent with the final total.
func (l *Ledger) Scale(factor float64) {
	for i := range l.entries {
		l.entries[i].Value *= factor
	}
}

// Total sums all recorded contributions.
func (l *Ledger) Total() float64 {
	var sum float64
	for _, e := range l.entries {
		sum += e.Value
	}
	return sum
}

// Get returns the value recorded under name and whether it exists.
func (l *Ledger) Get(name string) (float64, bool) {
	for _, e := range l.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// Len reports the number of recorded entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of the recorded contributions in application order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// MarshalJSON encodes the ledger as a JSON object whose keys appear in
// application order.
func (l Ledger) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range l.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal breakdown entry %q: %w", e.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the ledger, preserving the key
// order of the document. Decoding goes through the token stream because
// map-based decoding would lose ordering.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode breakdown: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode breakdown: expected object, got %v", tok)
	}

	l.entries = l.entries[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode breakdown key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode breakdown: non-string key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode breakdown value for %q: %w", key, err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("decode breakdown: non-numeric value for %q", key)
		}
		val, err := num.Float64()
		if err != nil {
			return fmt.Errorf("decode breakdown value for %q: %w", key, err)
		}
		l.entries = append(l.entries, Entry{Name: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode breakdown: %w", err)
	}
	return nil
}
