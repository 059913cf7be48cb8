package peak

import (
	"fmt"
	"math"
	"strings"

	"github.com/grailbio/base/errors"
)

// NaNPolicy makes the p-value ordering total when NaNs are present.
type NaNPolicy int

const (
	// NaNLowest ranks NaN below every number, including -Inf.
	NaNLowest NaNPolicy = iota
	// NaNHighest ranks NaN above every number, including +Inf.
	NaNHighest
	// NaNReject makes Merge fail on the first NaN p-value.
	NaNReject
)

// ParseNaNPolicy maps "lowest", "highest" or "reject" to a NaNPolicy.
func ParseNaNPolicy(s string) (NaNPolicy, error) {
	switch strings.ToLower(s) {
	case "", "lowest":
		return NaNLowest, nil
	case "highest":
		return NaNHighest, nil
	case "reject":
		return NaNReject, nil
	}
	return NaNLowest, errors.E(errors.Invalid, fmt.Sprintf("peak.ParseNaNPolicy: unknown policy %q", s))
}

// String implements fmt.Stringer.
func (n NaNPolicy) String() string {
	switch n {
	case NaNLowest:
		return "lowest"
	case NaNHighest:
		return "highest"
	case NaNReject:
		return "reject"
	}
	return fmt.Sprintf("NaNPolicy(%d)", int(n))
}

// less reports whether a ranks strictly below b.  Two NaNs are equivalent.
// NaNReject orders like NaNLowest; Merge never lets a NaN reach it under
// that policy.
func (n NaNPolicy) less(a, b float64) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return false
	case aNaN:
		return n != NaNHighest
	case bNaN:
		return n == NaNHighest
	}
	return a < b
}
