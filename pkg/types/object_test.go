package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestimonialMetadataDecodesBothDepths(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantRef  string
		wantName string
	}{
		{
			name:     "depth zero id",
			raw:      `{"client_name":"Ann","related_service":"svc1","rating":"5"}`,
			wantRef:  "svc1",
			wantName: "svc1",
		},
		{
			name:     "expanded object",
			raw:      `{"client_name":"Ann","related_service":{"id":"svc1","title":"Web","metadata":{"service_name":"Web Design"}},"rating":{"key":"5","value":"Five"}}`,
			wantRef:  "svc1",
			wantName: "Web Design",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m TestimonialMetadata
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			require.NotNil(t, m.RelatedService)
			assert.Equal(t, tt.wantRef, m.RelatedService.ID)
			assert.Equal(t, tt.wantName, m.RelatedService.Name())
			require.NotNil(t, m.Rating)
			assert.Equal(t, "5", m.Rating.Key)
		})
	}
}

func TestImageDecodesName(t *testing.T) {
	var img Image
	require.NoError(t, json.Unmarshal([]byte(`"icon.png"`), &img))
	assert.Equal(t, "icon.png", img.Name)

	var read Image
	require.NoError(t, json.Unmarshal([]byte(`{"url":"https://cdn.cosmicjs.com/a1b2-x.png","imgix_url":"https://imgix.cosmicjs.com/a1b2-x.png?w=200"}`), &read))
	assert.Equal(t, "https://imgix.cosmicjs.com/a1b2-x.png?w=200", read.ImgixURL)
	assert.Equal(t, "a1b2-x.png", read.Name)

	var named Image
	require.NoError(t, json.Unmarshal([]byte(`{"name":"kept.png","url":"https://cdn/other.png"}`), &named))
	assert.Equal(t, "kept.png", named.Name)
}

func TestMediaName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://cdn.cosmicjs.com/a1b2-icon.png", "a1b2-icon.png"},
		{"https://imgix.cosmicjs.com/a1b2-icon.png?w=64&auto=format", "a1b2-icon.png"},
		{"https://cdn.cosmicjs.com/", ""},
		{"https://cdn.cosmicjs.com", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MediaName(tt.in), tt.in)
	}
}

func TestEntityJSONFlattensHeader(t *testing.T) {
	e := Entity[ServiceMetadata]{
		Header:   Header{ID: "s1", Title: "Web"},
		Metadata: ServiceMetadata{ServiceName: "Web Design"},
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "s1", m["id"])
	assert.Equal(t, "Web Design", m["metadata"].(map[string]any)["service_name"])
}
