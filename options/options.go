// Package options holds the small option bag external callers use to
// steer the core: the categorical encoding scheme and a verbose
// logging flag.
package options

import "github.com/mlogit/mlogit/design"

// Bag is a default-filling option set, in the teacher's Config +
// constructor style.
type Bag struct {
	Params  string // "centerpoint" (default) or "dummy"
	Verbose bool
}

// New returns a Bag with the default scheme ("centerpoint") and
// verbose logging off.
func New() Bag {
	return Bag{Params: "centerpoint"}
}

// Scheme resolves the Params string to a design.Scheme, defaulting to
// CenterPoint for any value other than "dummy".
func (b Bag) Scheme() design.Scheme {
	if b.Params == "dummy" {
		return design.Dummy
	}
	return design.CenterPoint
}
