package sqlite

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// SeedSample fills an empty store with one object of each kind, linked the
// way real content is: the testimonial names the service and the case study
// references both the service and the team member. A store that already
// holds objects is left alone and zero is returned.
func (s *Store) SeedSample(ctx context.Context) (int, error) {
	s.mu.RLock()
	attached := s.attached
	var count int
	var err error
	if attached {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM objects").Scan(&count)
	}
	s.mu.RUnlock()
	if !attached {
		return 0, s.detached("seed")
	}
	if err != nil {
		return 0, failed("seed", err)
	}
	if count > 0 {
		return 0, nil
	}

	service, err := s.InsertOne(ctx, types.Insert{
		Type:  string(types.KindService),
		Title: "Web Design",
		Metadata: map[string]any{
			"service_name":      "Web Design",
			"short_description": "Custom websites built for speed and clarity.",
			"full_description":  "Discovery, design, and development of responsive marketing sites.",
			"starting_price":    "From $2,500",
			"key_features":      []any{"Responsive layouts", "SEO foundations", "CMS integration"},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("seeding service: %w", err)
	}

	member, err := s.InsertOne(ctx, types.Insert{
		Type:  string(types.KindTeamMember),
		Title: "Jordan Lee",
		Metadata: map[string]any{
			"full_name":        "Jordan Lee",
			"job_title":        "Lead Designer",
			"bio":              "Designs interfaces that get out of the way.",
			"email":            "jordan@example.com",
			"years_experience": 8,
		},
	})
	if err != nil {
		return 1, fmt.Errorf("seeding team member: %w", err)
	}

	if _, err := s.InsertOne(ctx, types.Insert{
		Type:  string(types.KindTestimonial),
		Title: "Acme on Web Design",
		Metadata: map[string]any{
			"client_name":      "Sam Rivera",
			"client_title":     "Marketing Director",
			"company_name":     "Acme Corp",
			"testimonial_text": "Our new site doubled inbound leads in a quarter.",
			"rating":           "5",
			"related_service":  service.ID,
		},
	}); err != nil {
		return 2, fmt.Errorf("seeding testimonial: %w", err)
	}

	if _, err := s.InsertOne(ctx, types.Insert{
		Type:  string(types.KindCaseStudy),
		Title: "Acme Corp Relaunch",
		Metadata: map[string]any{
			"client_name":      "Acme Corp",
			"project_overview": "A full relaunch of Acme's marketing site.",
			"project_duration": "10 weeks",
			"website_url":      "https://acme.example.com",
			"team_members":     []any{member.ID},
			"services_used":    []any{service.ID},
		},
	}); err != nil {
		return 3, fmt.Errorf("seeding case study: %w", err)
	}
	return 4, nil
}
