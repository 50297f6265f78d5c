package authorship

import "strings"

// Roles holds the positional and co-first flags of one publication.
// CoFirst never coexists with a positional flag; positional flags may
// overlap on very short lists.
type Roles struct {
	First   bool
	Second  bool
	CoFirst bool
	Last    bool
}

func (r Roles) None() bool {
	return !r.First && !r.Second && !r.CoFirst && !r.Last
}

func (r Roles) String() string {
	if r.None() {
		return "none"
	}
	var parts []string
	if r.First {
		parts = append(parts, "first")
	}
	if r.Second {
		parts = append(parts, "second")
	}
	if r.CoFirst {
		parts = append(parts, "co-first")
	}
	if r.Last {
		parts = append(parts, "last")
	}
	return strings.Join(parts, ",")
}

// Filter selects which roles count towards highlighting.
type Filter struct {
	First   bool `yaml:"first"`
	Second  bool `yaml:"second"`
	CoFirst bool `yaml:"co_first"`
	Last    bool `yaml:"last"`
}

func AllRoles() Filter {
	return Filter{First: true, Second: true, CoFirst: true, Last: true}
}

// Highlights reports whether any enabled role is set in r.
func (f Filter) Highlights(r Roles) bool {
	return (f.First && r.First) ||
		(f.Second && r.Second) ||
		(f.CoFirst && r.CoFirst) ||
		(f.Last && r.Last)
}
