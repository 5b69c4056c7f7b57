package types

// FieldType determines how a metadata field is edited and encoded.
type FieldType string

// Field types.
const (
	FieldText     FieldType = "text"
	FieldTextArea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldURL      FieldType = "url"
	FieldList     FieldType = "list"     // ordered list of strings
	FieldOption   FieldType = "option"   // select value, written as its key
	FieldImage    FieldType = "image"    // media, written as its name
	FieldRef      FieldType = "ref"      // object reference, written as its id
	FieldRefList  FieldType = "ref_list" // object references, written as ids
)

// Repeated reports whether the field holds an ordered list of entries.
func (t FieldType) Repeated() bool {
	return t == FieldList || t == FieldRefList
}

// Field describes one metadata field of a kind.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
}

// Schema is the field description that drives the entity form.
type Schema struct {
	Kind   Kind    `json:"kind"`
	Fields []Field `json:"fields"`
}

// Field returns the named field and whether it exists.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the required metadata fields in declaration order.
func (s Schema) Required() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

var schemas = map[Kind]Schema{
	KindService: {Kind: KindService, Fields: []Field{
		{Name: "service_name", Label: "Service Name", Type: FieldText, Required: true},
		{Name: "short_description", Label: "Short Description", Type: FieldTextArea},
		{Name: "full_description", Label: "Full Description", Type: FieldTextArea},
		{Name: "starting_price", Label: "Starting Price", Type: FieldText},
		{Name: "key_features", Label: "Key Features", Type: FieldList},
		{Name: "service_icon", Label: "Service Icon", Type: FieldImage},
	}},
	KindTeamMember: {Kind: KindTeamMember, Fields: []Field{
		{Name: "full_name", Label: "Full Name", Type: FieldText, Required: true},
		{Name: "job_title", Label: "Job Title", Type: FieldText, Required: true},
		{Name: "bio", Label: "Bio", Type: FieldTextArea},
		{Name: "email", Label: "Email", Type: FieldEmail},
		{Name: "linkedin_url", Label: "LinkedIn URL", Type: FieldURL},
		{Name: "twitter_handle", Label: "Twitter Handle", Type: FieldText},
		{Name: "years_experience", Label: "Years of Experience", Type: FieldNumber},
		{Name: "profile_photo", Label: "Profile Photo", Type: FieldImage},
	}},
	KindTestimonial: {Kind: KindTestimonial, Fields: []Field{
		{Name: "client_name", Label: "Client Name", Type: FieldText, Required: true},
		{Name: "client_title", Label: "Client Title", Type: FieldText},
		{Name: "company_name", Label: "Company Name", Type: FieldText},
		{Name: "testimonial_text", Label: "Testimonial", Type: FieldTextArea, Required: true},
		{Name: "rating", Label: "Rating", Type: FieldOption},
		{Name: "client_photo", Label: "Client Photo", Type: FieldImage},
		{Name: "related_service", Label: "Related Service", Type: FieldRef},
	}},
	KindCaseStudy: {Kind: KindCaseStudy, Fields: []Field{
		{Name: "client_name", Label: "Client Name", Type: FieldText, Required: true},
		{Name: "project_overview", Label: "Project Overview", Type: FieldTextArea},
		{Name: "project_duration", Label: "Project Duration", Type: FieldText},
		{Name: "website_url", Label: "Website URL", Type: FieldURL},
		{Name: "featured_image", Label: "Featured Image", Type: FieldImage},
		{Name: "team_members", Label: "Team Members", Type: FieldRefList},
		{Name: "services_used", Label: "Services Used", Type: FieldRefList},
	}},
}

// SchemaFor returns the field schema for kind. Unknown kinds yield an
// empty schema.
func SchemaFor(kind Kind) Schema {
	s, ok := schemas[kind]
	if !ok {
		return Schema{Kind: kind}
	}
	return s
}
