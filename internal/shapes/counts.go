package shapes

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Counts holds the number of shapes found per kind. The zero value is all
// zeros, and every Detect call starts from a fresh zero value.
type Counts [numKinds]int

// Add increments the counter for k by one.
func (c *Counts) Add(k Kind) {
	if k.Valid() {
		c[k]++
	}
}

// Get returns the counter for k.
func (c Counts) Get(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return c[k]
}

// Total returns the number of shapes across all kinds.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// MarshalJSON writes the counters as an object keyed by kind name, in report
// order.
func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range Kinds() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", k.String(), c[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form written by MarshalJSON. Missing kinds
// are left at zero.
func (c *Counts) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Counts
	for name, n := range m {
		k, err := ParseKind(name)
		if err != nil {
			return err
		}
		out[k] = n
	}
	*c = out
	return nil
}
