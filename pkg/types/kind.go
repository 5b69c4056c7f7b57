package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the managed content collections.
type Kind string

// Managed kinds. The value is the collection type string used by the store.
const (
	KindService     Kind = "services"
	KindTeamMember  Kind = "team-members"
	KindTestimonial Kind = "testimonials"
	KindCaseStudy   Kind = "case-studies"
)

// Kinds lists every managed kind in dashboard order.
var Kinds = []Kind{
	KindService,
	KindTeamMember,
	KindTestimonial,
	KindCaseStudy,
}

// ErrUnknownKind is returned by ParseKind for unrecognized names.
var ErrUnknownKind = errors.New("unknown content kind")

type kindInfo struct {
	label    string
	singular string
	plural   string
	depth    int
}

var kindTable = map[Kind]kindInfo{
	KindService:     {label: "Service", singular: "service", plural: "services", depth: 1},
	KindTeamMember:  {label: "Team Member", singular: "team member", plural: "team members", depth: 1},
	KindTestimonial: {label: "Testimonial", singular: "testimonial", plural: "testimonials", depth: 1},
	// Case studies embed service references that themselves carry relations.
	KindCaseStudy: {label: "Case Study", singular: "case study", plural: "case studies", depth: 2},
}

// Label is the display tag used in the recent-activity feed.
func (k Kind) Label() string { return kindTable[k].label }

// Singular is the lower-case noun used in error messages.
func (k Kind) Singular() string { return kindTable[k].singular }

// Plural is the lower-case plural noun used in error messages.
func (k Kind) Plural() string { return kindTable[k].plural }

// Depth is the relationship-expansion depth requested on reads.
func (k Kind) Depth() int { return kindTable[k].depth }

// Valid reports whether k is one of the managed kinds.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// ParseKind accepts the collection type string or a common alias
// ("service", "team", "case-study", ...).
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	switch n {
	case "services", "service":
		return KindService, nil
	case "team-members", "team-member", "team", "members":
		return KindTeamMember, nil
	case "testimonials", "testimonial":
		return KindTestimonial, nil
	case "case-studies", "case-study", "cases":
		return KindCaseStudy, nil
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownKind, name, KindNames())
}

// KindNames returns the comma-separated collection names for help output.
func KindNames() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
