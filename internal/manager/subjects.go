package manager

import (
	"fmt"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// TestimonialSubject names a testimonial by its client in the delete prompt.
func TestimonialSubject(e types.Entity[types.TestimonialMetadata]) string {
	return fmt.Sprintf("the testimonial from %q", e.Metadata.ClientName)
}
