package shapes

import (
	"fmt"
	"strings"
)

// Kind is the class a detected contour is assigned to.
type Kind int

const (
	// Triangle is any polygon approximated with exactly 3 vertices.
	Triangle Kind = iota
	// Square is a 4-vertex polygon whose bounding box is roughly as wide as tall.
	Square
	// Rectangle is any other 4-vertex polygon.
	Rectangle
	// Circle is the fallback for every other vertex count.
	Circle

	numKinds = 4
)

var kindNames = [numKinds]string{"triangle", "square", "rectangle", "circle"}

// Kinds returns every kind in report order.
func Kinds() []Kind {
	return []Kind{Triangle, Square, Rectangle, Circle}
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// ParseKind maps a kind name (case-insensitive) back to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid shape kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
