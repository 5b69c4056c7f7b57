package content

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Catalog bundles the four collections built over one injected store.
type Catalog struct {
	Services     *Collection[types.ServiceMetadata]
	TeamMembers  *Collection[types.TeamMemberMetadata]
	Testimonials *Collection[types.TestimonialMetadata]
	CaseStudies  *Collection[types.CaseStudyMetadata]
}

// NewCatalog builds every collection over store.
func NewCatalog(store types.ContentStore, log *zap.Logger) *Catalog {
	return &Catalog{
		Services:     NewCollection[types.ServiceMetadata](store, types.KindService, log),
		TeamMembers:  NewCollection[types.TeamMemberMetadata](store, types.KindTeamMember, log),
		Testimonials: NewCollection[types.TestimonialMetadata](store, types.KindTestimonial, log),
		CaseStudies:  NewCollection[types.CaseStudyMetadata](store, types.KindCaseStudy, log),
	}
}
