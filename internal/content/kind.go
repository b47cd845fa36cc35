// Package content defines the entity schemas of the agency site: the
// collections and singletons stored in the document tree, their field sets,
// and the built-in fallback records shown on the public site.
package content

// Kind discriminates the content kinds. Every kind owns a Schema that drives
// form generation in the admin console and the shape of merge payloads.
type Kind int

const (
	KindInquiry Kind = iota + 1
	KindOrder
	KindService
	KindProject
	KindTestimonial
	KindPricingPlan
	KindDeveloper
	KindFAQ
	KindProcessStep
	KindHero
	KindSettings
)

// FieldType describes how a form value is coerced into a stored value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldLongText
	FieldURL
	FieldEmail
	FieldIcon
	// FieldList is a comma-joined string; consumers split it on every read.
	FieldList
	FieldInt
	FieldBool
	// FieldTimestamp is epoch milliseconds assigned at submission time.
	FieldTimestamp
)

// Field is one entry of a kind's field set.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Optional bool
}

// Schema is the field set and storage shape of a kind.
type Schema struct {
	Kind  Kind
	Path  string
	Label string
	// Singleton kinds are a single record addressed by path, never by id.
	Singleton bool
	// AppendOnly kinds are produced by the public intake forms and never edited.
	AppendOnly bool
	Fields     []Field
}

var schemas = map[Kind]Schema{
	KindInquiry: {
		Kind: KindInquiry, Path: "inquiries", Label: "Inquiries", AppendOnly: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "email", Label: "Email", Type: FieldEmail},
			{Name: "subject", Label: "Subject", Type: FieldText},
			{Name: "message", Label: "Message", Type: FieldLongText},
			{Name: "timestamp", Label: "Received", Type: FieldTimestamp},
		},
	},
	KindOrder: {
		Kind: KindOrder, Path: "orders", Label: "Orders", AppendOnly: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "email", Label: "Email", Type: FieldEmail},
			{Name: "phone", Label: "Phone", Type: FieldText},
			{Name: "plan", Label: "Plan", Type: FieldText},
			{Name: "message", Label: "Message", Type: FieldLongText, Optional: true},
			{Name: "timestamp", Label: "Received", Type: FieldTimestamp},
		},
	},
	KindService: {
		Kind: KindService, Path: "services", Label: "Services",
		Fields: []Field{
			{Name: "title", Label: "Title", Type: FieldText},
			{Name: "description", Label: "Description", Type: FieldLongText},
			{Name: "icon", Label: "Icon", Type: FieldIcon},
		},
	},
	KindProject: {
		Kind: KindProject, Path: "projects", Label: "Projects",
		Fields: []Field{
			{Name: "title", Label: "Title", Type: FieldText},
			{Name: "description", Label: "Description", Type: FieldLongText},
			{Name: "image", Label: "Image URL", Type: FieldURL},
			{Name: "link", Label: "Link", Type: FieldURL},
			{Name: "tags", Label: "Tags (comma separated)", Type: FieldList},
		},
	},
	KindTestimonial: {
		Kind: KindTestimonial, Path: "testimonials", Label: "Testimonials",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "role", Label: "Role", Type: FieldText},
			{Name: "content", Label: "Content", Type: FieldLongText},
			{Name: "rating", Label: "Rating (1-5)", Type: FieldInt},
		},
	},
	KindPricingPlan: {
		Kind: KindPricingPlan, Path: "pricing", Label: "Pricing",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "price", Label: "Price", Type: FieldText},
			{Name: "description", Label: "Description", Type: FieldLongText},
			{Name: "features", Label: "Features (comma separated)", Type: FieldList},
			{Name: "popular", Label: "Most popular", Type: FieldBool},
		},
	},
	KindDeveloper: {
		Kind: KindDeveloper, Path: "developers", Label: "Developers",
		Fields: []Field{
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "role", Label: "Role", Type: FieldText},
			{Name: "bio", Label: "Bio", Type: FieldLongText},
			{Name: "image", Label: "Image URL", Type: FieldURL},
			{Name: "linkedin", Label: "LinkedIn URL", Type: FieldURL, Optional: true},
		},
	},
	KindFAQ: {
		Kind: KindFAQ, Path: "faqs", Label: "FAQs",
		Fields: []Field{
			{Name: "question", Label: "Question", Type: FieldText},
			{Name: "answer", Label: "Answer", Type: FieldLongText},
		},
	},
	KindProcessStep: {
		Kind: KindProcessStep, Path: "process", Label: "Process",
		Fields: []Field{
			{Name: "title", Label: "Title", Type: FieldText},
			{Name: "description", Label: "Description", Type: FieldLongText},
			{Name: "icon", Label: "Icon", Type: FieldIcon},
		},
	},
	KindHero: {
		Kind: KindHero, Path: "hero", Label: "Hero Section", Singleton: true,
		Fields: []Field{
			{Name: "badge", Label: "Badge", Type: FieldText},
			{Name: "title1", Label: "Title line 1", Type: FieldText},
			{Name: "title2", Label: "Title line 2 (highlighted)", Type: FieldText},
			{Name: "title3", Label: "Title line 3", Type: FieldText},
			{Name: "subtitle", Label: "Subtitle", Type: FieldLongText},
			{Name: "btn1Text", Label: "Primary button text", Type: FieldText},
			{Name: "btn1Link", Label: "Primary button link", Type: FieldText}, // may be an in-page anchor
			{Name: "btn2Text", Label: "Secondary button text", Type: FieldText},
			{Name: "btn2Link", Label: "Secondary button link", Type: FieldText},
		},
	},
	KindSettings: {
		Kind: KindSettings, Path: "settings", Label: "Settings", Singleton: true,
		Fields: []Field{
			{Name: "websiteName", Label: "Website name", Type: FieldText},
			{Name: "contactEmail", Label: "Contact email", Type: FieldEmail},
			{Name: "contactPhone", Label: "Contact phone", Type: FieldText},
			{Name: "contactLocation", Label: "Contact location", Type: FieldText},
			{Name: "socialYoutube", Label: "YouTube", Type: FieldURL, Optional: true},
			{Name: "socialInstagram", Label: "Instagram", Type: FieldURL, Optional: true},
			{Name: "socialLinkedin", Label: "LinkedIn", Type: FieldURL, Optional: true},
			{Name: "socialWhatsapp", Label: "WhatsApp", Type: FieldURL, Optional: true},
			{Name: "socialTelegram", Label: "Telegram", Type: FieldURL, Optional: true},
		},
	},
}

// tabOrder is the admin console tab order.
var tabOrder = []Kind{
	KindInquiry, KindOrder, KindService, KindProject, KindTestimonial,
	KindPricingPlan, KindDeveloper, KindFAQ, KindProcessStep, KindHero, KindSettings,
}

// Kinds returns every kind in admin tab order.
func Kinds() []Kind {
	out := make([]Kind, len(tabOrder))
	copy(out, tabOrder)
	return out
}

// Lookup resolves a store path to its kind.
func Lookup(path string) (Kind, bool) {
	for k, s := range schemas {
		if s.Path == path {
			return k, true
		}
	}
	return 0, false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := schemas[k]
	return ok
}

// Schema returns the schema of k. Unknown kinds yield a zero Schema.
func (k Kind) Schema() Schema {
	return schemas[k]
}

// Path returns the store path of k.
func (k Kind) Path() string {
	return schemas[k].Path
}

func (k Kind) String() string {
	if s, ok := schemas[k]; ok {
		return s.Path
	}
	return "unknown"
}

// Field returns the named field of the schema.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EditableFields returns the fields an editor fills in: everything except the
// server-assigned timestamp.
func (s Schema) EditableFields() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Type == FieldTimestamp {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Addable reports whether the admin console offers an add action for the kind.
func (s Schema) Addable() bool {
	return !s.Singleton && !s.AppendOnly
}
