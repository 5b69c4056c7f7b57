package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"services", KindService},
		{"Service", KindService},
		{"team", KindTeamMember},
		{"team_members", KindTeamMember},
		{"testimonial", KindTestimonial},
		{"case-study", KindCaseStudy},
		{" case-studies ", KindCaseStudy},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("posts")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Contains(t, err.Error(), "services, team-members, testimonials, case-studies")
}

func TestKindAttributes(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
		assert.NotEmpty(t, k.Label(), k)
		assert.NotEmpty(t, SchemaFor(k).Required(), k)
	}
	assert.Equal(t, 2, KindCaseStudy.Depth())
	assert.Equal(t, 1, KindService.Depth())
	assert.Equal(t, "team members", KindTeamMember.Plural())
	assert.Equal(t, "case study", KindCaseStudy.Singular())
	assert.False(t, Kind("posts").Valid())
}

func TestSchemaRequired(t *testing.T) {
	var names []string
	for _, f := range SchemaFor(KindTeamMember).Required() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"full_name", "job_title"}, names)

	f, ok := SchemaFor(KindService).Field("key_features")
	require.True(t, ok)
	assert.True(t, f.Type.Repeated())

	_, ok = SchemaFor(KindService).Field("nope")
	assert.False(t, ok)
}
