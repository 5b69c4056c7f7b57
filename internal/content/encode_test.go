package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

func TestWritableMetadata(t *testing.T) {
	tests := []struct {
		name string
		kind types.Kind
		in   map[string]any
		want map[string]any
	}{
		{
			name: "expanded reference collapses to id",
			kind: types.KindTestimonial,
			in: map[string]any{
				"client_name":     "Ann",
				"related_service": map[string]any{"id": "svc1", "title": "Web"},
				"rating":          map[string]any{"key": "5", "value": "Five"},
			},
			want: map[string]any{"client_name": "Ann", "related_service": "svc1", "rating": "5"},
		},
		{
			name: "reference lists collapse and drop blanks",
			kind: types.KindCaseStudy,
			in: map[string]any{
				"services_used": []any{map[string]any{"id": "a"}, "b", ""},
				"team_members":  []any{},
			},
			want: map[string]any{"services_used": []any{"a", "b"}, "team_members": []any{}},
		},
		{
			name: "image read shape takes its name from the url",
			kind: types.KindService,
			in: map[string]any{
				"service_name": "Web",
				"service_icon": map[string]any{
					"url":       "https://cdn.cosmicjs.com/a1b2-x.png",
					"imgix_url": "https://imgix.cosmicjs.com/a1b2-x.png",
				},
			},
			want: map[string]any{"service_name": "Web", "service_icon": "a1b2-x.png"},
		},
		{
			name: "image with neither name nor url is dropped",
			kind: types.KindService,
			in: map[string]any{
				"service_name": "Web",
				"service_icon": map[string]any{},
			},
			want: map[string]any{"service_name": "Web"},
		},
		{
			name: "image with media name keeps the name",
			kind: types.KindTeamMember,
			in: map[string]any{
				"profile_photo": map[string]any{"name": "ann.png", "url": "https://cdn/ann.png"},
			},
			want: map[string]any{"profile_photo": "ann.png"},
		},
		{
			name: "unknown fields pass through",
			kind: types.KindService,
			in:   map[string]any{"extra": 3.0},
			want: map[string]any{"extra": 3.0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WritableMetadata(types.SchemaFor(tt.kind), tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("WritableMetadata() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWritableMetadataLeavesInputAlone(t *testing.T) {
	in := map[string]any{"related_service": map[string]any{"id": "svc1"}}
	_ = WritableMetadata(types.SchemaFor(types.KindTestimonial), in)
	assert.Equal(t, map[string]any{"id": "svc1"}, in["related_service"])
}
