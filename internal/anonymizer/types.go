package anonymizer

// Category identifies the kind of personal data a value belongs to.
// The constant values double as tag prefixes and are part of the wire
// contract: a mapping produced by one deployment must deanonymize on another.
type Category string

// Tag prefixes for the built-in categories.
const (
	CategoryName         Category = "NOM"
	CategoryFirstName    Category = "PRENOM"
	CategoryAddress      Category = "ADRESSE"
	CategoryPhone        Category = "TEL"
	CategoryMobile       Category = "PORTABLE"
	CategoryEmail        Category = "EMAIL"
	CategoryOrganization Category = "SOCIETE"
	// CategoryCustom is the fallback prefix when a custom field label
	// sanitizes to nothing.
	CategoryCustom Category = "PERSO"
)

// Entity is one tier (person or organization) whose identifying values must
// be replaced. All fields are optional; empty or too-short values are
// skipped without error.
type Entity struct {
	Name             string `json:"name,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	Address          string `json:"address,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Mobile           string `json:"mobile,omitempty"`
	Email            string `json:"email,omitempty"`
	Organization     string `json:"organization,omitempty"`
	CustomField      string `json:"custom_field,omitempty"`
	CustomFieldLabel string `json:"custom_field_label,omitempty"`
}

// matchMode selects how a value is located in the text.
type matchMode int

const (
	// matchCaseVariants replaces case-insensitive occurrences plus the
	// explicit all-upper and all-lower forms.
	matchCaseVariants matchMode = iota
	// matchExact replaces literal occurrences only. Addresses and
	// organizations carry mixed-case street and company text that a
	// case-insensitive pass would mangle.
	matchExact
	// matchPhone matches the value's digits with any of ". - space"
	// between them, so differently punctuated phone numbers still match.
	matchPhone
)

// attribute pairs an entity field with its category, minimum accepted
// length and match mode. Processing order inside one entity is fixed.
type attribute struct {
	category Category
	value    string
	minLen   int
	mode     matchMode
}

// attributes returns the entity's fields in processing order: name, first
// name, address, phone, mobile, email, organization, then the custom field.
func (e Entity) attributes() []attribute {
	attrs := []attribute{
		{CategoryName, e.Name, 1, matchCaseVariants},
		{CategoryFirstName, e.FirstName, 1, matchCaseVariants},
		{CategoryAddress, e.Address, 5, matchExact},
		{CategoryPhone, e.Phone, 5, matchPhone},
		{CategoryMobile, e.Mobile, 5, matchPhone},
		{CategoryEmail, e.Email, 1, matchCaseVariants},
		{CategoryOrganization, e.Organization, 1, matchExact},
	}
	if e.CustomField != "" {
		attrs = append(attrs, attribute{
			category: SanitizeLabel(e.CustomFieldLabel),
			value:    e.CustomField,
			minLen:   1,
			mode:     matchCaseVariants,
		})
	}
	return attrs
}
