// Package reliability fits software reliability growth models to a
// per-bucket error trajectory.
package reliability

import (
	"fmt"
	"strings"
)

// Variant selects the growth model.
type Variant int

const (
	// SCWIND is the Schick-Wolverton model.
	SCWIND Variant = iota + 1
	// GO is the Goel-Okumoto model.
	GO
)

// Variants lists every supported model.
var Variants = []Variant{SCWIND, GO}

// ParseVariant resolves a model name such as "scwind" or "go".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scwind", "schick-wolverton", "sw":
		return SCWIND, nil
	case "go", "goel-okumoto":
		return GO, nil
	default:
		return 0, fmt.Errorf("unknown model %q (want scwind or go)", s)
	}
}

func (v Variant) String() string {
	switch v {
	case SCWIND:
		return "scwind"
	case GO:
		return "go"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// MarshalText lets variants appear by name in JSON and YAML reports.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
