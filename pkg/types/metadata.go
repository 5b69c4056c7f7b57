package types

// ServiceMetadata is the metadata bag of a services object.
type ServiceMetadata struct {
	ServiceName      string   `json:"service_name"`
	ShortDescription string   `json:"short_description"`
	FullDescription  string   `json:"full_description"`
	StartingPrice    string   `json:"starting_price"`
	KeyFeatures      []string `json:"key_features"`
	ServiceIcon      *Image   `json:"service_icon,omitempty"`
}

// TeamMemberMetadata is the metadata bag of a team-members object.
type TeamMemberMetadata struct {
	FullName        string `json:"full_name"`
	JobTitle        string `json:"job_title"`
	Bio             string `json:"bio"`
	Email           string `json:"email"`
	LinkedinURL     string `json:"linkedin_url"`
	TwitterHandle   string `json:"twitter_handle"`
	YearsExperience *int   `json:"years_experience,omitempty"`
	ProfilePhoto    *Image `json:"profile_photo,omitempty"`
}

// TestimonialMetadata is the metadata bag of a testimonials object.
type TestimonialMetadata struct {
	ClientName      string  `json:"client_name"`
	ClientTitle     string  `json:"client_title"`
	CompanyName     string  `json:"company_name"`
	TestimonialText string  `json:"testimonial_text"`
	Rating          *Option `json:"rating,omitempty"`
	ClientPhoto     *Image  `json:"client_photo,omitempty"`
	RelatedService  *Ref    `json:"related_service,omitempty"`
}

// CaseStudyMetadata is the metadata bag of a case-studies object.
type CaseStudyMetadata struct {
	ClientName      string `json:"client_name"`
	ProjectOverview string `json:"project_overview"`
	ProjectDuration string `json:"project_duration"`
	WebsiteURL      string `json:"website_url"`
	FeaturedImage   *Image `json:"featured_image,omitempty"`
	TeamMembers     []Ref  `json:"team_members,omitempty"`
	ServicesUsed    []Ref  `json:"services_used,omitempty"`
}
