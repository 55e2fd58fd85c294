package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Answer is a single form value. Essential boolean checks carry a bool,
// graded selects and scored characteristics carry a string.
type Answer struct {
	text    string
	boolean bool
	isBool  bool
}

// Bool returns a boolean answer
func Bool(v bool) Answer {
	return Answer{boolean: v, isBool: true}
}

// Text returns a string answer
func Text(v string) Answer {
	return Answer{text: v}
}

// IsBool reports whether the answer holds a boolean
func (a Answer) IsBool() bool {
	return a.isBool
}

// True reports whether the answer is the boolean true
func (a Answer) True() bool {
	return a.isBool && a.boolean
}

// String returns the textual form of the answer. Booleans render as "true"/"false".
func (a Answer) String() string {
	if a.isBool {
		if a.boolean {
			return "true"
		}
		return "false"
	}
	return a.text
}

// MarshalJSON implements json.Marshaler
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.isBool {
		return json.Marshal(a.boolean)
	}
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts a boolean, a string, a number or null.
// Numbers keep their decimal form so catalog ids sent as 3 or "3" compare equal.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*a = Answer{}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = Bool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Text(n.String())
		return nil
	}

	return fmt.Errorf("scoring: cannot use %s as an answer", string(data))
}

// AnswerSet is an immutable snapshot of every answer in one inspection,
// keyed by field identifier. The zero value is an empty set.
type AnswerSet struct {
	values map[string]Answer
}

// NewAnswerSet copies values into a new set
func NewAnswerSet(values map[string]Answer) AnswerSet {
	cp := make(map[string]Answer, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return AnswerSet{values: cp}
}

// Get returns the answer for key
func (s AnswerSet) Get(key string) (Answer, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of answered fields
func (s AnswerSet) Len() int {
	return len(s.values)
}

// Keys returns the answered field keys in sorted order
func (s AnswerSet) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying values
func (s AnswerSet) Map() map[string]Answer {
	cp := make(map[string]Answer, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// UpdateOp names the kind of change an Update makes
type UpdateOp string

const (
	OpSet   UpdateOp = "set"
	OpClear UpdateOp = "clear"
	OpReset UpdateOp = "reset"
)

// Update is one reducer step applied to an AnswerSet
type Update struct {
	Op    UpdateOp `json:"op"`
	Key   string   `json:"key,omitempty"`
	Value Answer   `json:"value"`
}

// Set builds an update assigning value to key
func Set(key string, value Answer) Update {
	return Update{Op: OpSet, Key: key, Value: value}
}

// Clear builds an update removing key
func Clear(key string) Update {
	return Update{Op: OpClear, Key: key}
}

// Reset builds an update that discards every answer
func Reset() Update {
	return Update{Op: OpReset}
}

// Apply returns a new set with u applied. The receiver is never modified.
// Unknown ops and set/clear without a key leave the set unchanged.
func (s AnswerSet) Apply(u Update) AnswerSet {
	switch u.Op {
	case OpReset:
		return AnswerSet{}
	case OpSet:
		if u.Key == "" {
			return s
		}
		next := s.Map()
		next[u.Key] = u.Value
		return AnswerSet{values: next}
	case OpClear:
		if _, ok := s.values[u.Key]; !ok {
			return s
		}
		next := s.Map()
		delete(next, u.Key)
		return AnswerSet{values: next}
	}
	return s
}

// ApplyAll folds updates over the set in order
func (s AnswerSet) ApplyAll(updates ...Update) AnswerSet {
	for _, u := range updates {
		s = s.Apply(u)
	}
	return s
}

// MarshalJSON encodes the set as a flat object
func (s AnswerSet) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}

// UnmarshalJSON decodes a flat object of booleans and strings
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	var values map[string]Answer
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = AnswerSet{values: values}
	return nil
}
