package types

import (
	"bytes"
	"encoding/json"
	"net/url"
	"path"
	"time"
)

// Projection is the fixed field set requested on every read.
var Projection = []string{"id", "title", "slug", "metadata", "created_at", "modified_at"}

// Object is the schema-free shape returned by a ContentStore.
type Object struct {
	ID         string         `json:"id"`
	Type       string         `json:"type,omitempty"`
	Title      string         `json:"title"`
	Slug       string         `json:"slug"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// Header carries the identity and timestamps common to every entity.
type Header struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Header returns the object's identity fields.
func (o Object) Header() Header {
	return Header{
		ID:         o.ID,
		Title:      o.Title,
		Slug:       o.Slug,
		CreatedAt:  o.CreatedAt,
		ModifiedAt: o.ModifiedAt,
	}
}

// Entity is an Object whose metadata bag has been decoded into M.
type Entity[M any] struct {
	Header
	Metadata M `json:"metadata"`
}

// FormData is the payload for creating an entity.
type FormData[M any] struct {
	Title    string
	Metadata M
}

// Patch is a partial update. Nil fields are left untouched by the store.
type Patch[M any] struct {
	Title    *string
	Metadata *M
}

// Image is a media reference. The store returns url/imgix_url on reads and
// accepts the media name on writes. A bare JSON string decodes as Name; an
// object without a name takes it from the last segment of its URL.
type Image struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	ImgixURL string `json:"imgix_url,omitempty"`
}

func (i *Image) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &i.Name)
	}
	type plain Image
	if err := json.Unmarshal(data, (*plain)(i)); err != nil {
		return err
	}
	if i.Name == "" {
		i.Name = MediaName(i.URL)
	}
	if i.Name == "" {
		i.Name = MediaName(i.ImgixURL)
	}
	return nil
}

// MediaName returns the media file name a hosted media URL points at, or ""
// when the URL has no file segment.
func MediaName(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Option is a select-dropdown value. A bare JSON string decodes as the key.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (o *Option) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		if err := json.Unmarshal(data, &o.Key); err != nil {
			return err
		}
		o.Value = o.Key
		return nil
	}
	type plain Option
	return json.Unmarshal(data, (*plain)(o))
}

// Ref is a reference to another object. At depth zero the store returns the
// bare id; at depth one or more it returns the expanded object.
type Ref struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Slug     string         `json:"slug,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &r.ID)
	}
	type plain Ref
	return json.Unmarshal(data, (*plain)(r))
}

// Name returns the referenced object's display name, preferring a
// metadata name field over the title.
func (r Ref) Name() string {
	for _, key := range []string{"service_name", "full_name", "client_name"} {
		if s, ok := r.Metadata[key].(string); ok && s != "" {
			return s
		}
	}
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

func isJSONString(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '"'
}
