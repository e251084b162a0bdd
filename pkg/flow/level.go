// Package flow models flow-typing strictness levels and the one-hop rule
// deciding whether a module could be upgraded to strict.
package flow

import "encoding/json"

// Level is the type-checking mode of a module.
type Level int

// Levels in increasing strictness. Unknown is the zero value and ranks below
// None when aggregating.
const (
	Unknown Level = iota
	None
	Flow
	StrictLocal
	Strict
)

var levelNames = map[Level]string{
	Unknown:     "unknown",
	None:        "none",
	Flow:        "flow",
	StrictLocal: "strict-local",
	Strict:      "strict",
}

// Levels lists every level in legend order.
var Levels = []Level{None, Flow, StrictLocal, Strict, Unknown}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// Parse converts a level name. Unrecognised names yield Unknown and false.
func Parse(s string) (Level, bool) {
	for l, name := range levelNames {
		if name == s {
			return l, true
		}
	}
	return Unknown, false
}

// MarshalJSON encodes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a level name. Any other value, string or not, is
// Unknown.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*l = Unknown
		return nil
	}
	*l, _ = Parse(s)
	return nil
}

// Min returns the least strict level, seeded with Strict so that an empty
// input is vacuously strict.
func Min(levels ...Level) Level {
	lowest := Strict
	for _, l := range levels {
		if l < lowest {
			lowest = l
		}
	}
	return lowest
}

// CanUpgrade reports whether a module at level own, whose direct
// dependencies are at deps, could be made strict: every dependency is
// strict or strict-local and the module is not strict already.
// Dependencies of dependencies are not consulted.
func CanUpgrade(own Level, deps []Level) bool {
	switch Min(deps...) {
	case Strict, StrictLocal:
		return own != Strict
	default:
		return false
	}
}
