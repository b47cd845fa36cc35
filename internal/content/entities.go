package content

// Typed views over records. A missing field decodes to its zero value so a
// malformed record still renders.

type Service struct {
	ID          string
	Title       string
	Description string
	Icon        string
}

func ServiceFrom(r Record) Service {
	return Service{ID: r.ID, Title: r.String("title"), Description: r.String("description"), Icon: r.String("icon")}
}

type Project struct {
	ID          string
	Title       string
	Description string
	Image       string
	Link        string
	Tags        []string
}

func ProjectFrom(r Record) Project {
	return Project{
		ID:          r.ID,
		Title:       r.String("title"),
		Description: r.String("description"),
		Image:       r.String("image"),
		Link:        r.String("link"),
		Tags:        r.List("tags"),
	}
}

type Testimonial struct {
	ID      string
	Name    string
	Role    string
	Content string
	Rating  int
}

// TestimonialFrom clamps the rating into 0..5.
func TestimonialFrom(r Record) Testimonial {
	rating, _ := r.Int("rating")
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return Testimonial{ID: r.ID, Name: r.String("name"), Role: r.String("role"), Content: r.String("content"), Rating: rating}
}

type PricingPlan struct {
	ID          string
	Name        string
	Price       string
	Description string
	Features    []string
	Popular     bool
}

func PricingPlanFrom(r Record) PricingPlan {
	return PricingPlan{
		ID:          r.ID,
		Name:        r.String("name"),
		Price:       r.String("price"),
		Description: r.String("description"),
		Features:    r.List("features"),
		Popular:     r.Bool("popular"),
	}
}

type Developer struct {
	ID       string
	Name     string
	Role     string
	Bio      string
	Image    string
	LinkedIn string
}

func DeveloperFrom(r Record) Developer {
	return Developer{
		ID:       r.ID,
		Name:     r.String("name"),
		Role:     r.String("role"),
		Bio:      r.String("bio"),
		Image:    r.String("image"),
		LinkedIn: r.String("linkedin"),
	}
}

type FAQ struct {
	ID       string
	Question string
	Answer   string
}

func FAQFrom(r Record) FAQ {
	return FAQ{ID: r.ID, Question: r.String("question"), Answer: r.String("answer")}
}

type ProcessStep struct {
	ID          string
	Title       string
	Description string
	Icon        string
}

func ProcessStepFrom(r Record) ProcessStep {
	return ProcessStep{ID: r.ID, Title: r.String("title"), Description: r.String("description"), Icon: r.String("icon")}
}

type Hero struct {
	Badge    string
	Title1   string
	Title2   string
	Title3   string
	Subtitle string
	Btn1Text string
	Btn1Link string
	Btn2Text string
	Btn2Link string
}

// HeroFrom fills every empty field from DefaultHero.
func HeroFrom(r Record) Hero {
	d := DefaultHero
	return Hero{
		Badge:    or(r.String("badge"), d.Badge),
		Title1:   or(r.String("title1"), d.Title1),
		Title2:   or(r.String("title2"), d.Title2),
		Title3:   or(r.String("title3"), d.Title3),
		Subtitle: or(r.String("subtitle"), d.Subtitle),
		Btn1Text: or(r.String("btn1Text"), d.Btn1Text),
		Btn1Link: or(r.String("btn1Link"), d.Btn1Link),
		Btn2Text: or(r.String("btn2Text"), d.Btn2Text),
		Btn2Link: or(r.String("btn2Link"), d.Btn2Link),
	}
}

type Settings struct {
	WebsiteName     string
	ContactEmail    string
	ContactPhone    string
	ContactLocation string
	SocialYoutube   string
	SocialInstagram string
	SocialLinkedin  string
	SocialWhatsapp  string
	SocialTelegram  string
}

// SettingsFrom fills the contact fields from DefaultSettings. Social links
// have no default and stay empty.
func SettingsFrom(r Record) Settings {
	d := DefaultSettings
	return Settings{
		WebsiteName:     or(r.String("websiteName"), d.WebsiteName),
		ContactEmail:    or(r.String("contactEmail"), d.ContactEmail),
		ContactPhone:    or(r.String("contactPhone"), d.ContactPhone),
		ContactLocation: or(r.String("contactLocation"), d.ContactLocation),
		SocialYoutube:   r.String("socialYoutube"),
		SocialInstagram: r.String("socialInstagram"),
		SocialLinkedin:  r.String("socialLinkedin"),
		SocialWhatsapp:  r.String("socialWhatsapp"),
		SocialTelegram:  r.String("socialTelegram"),
	}
}

type Inquiry struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Timestamp int64
}

func InquiryFrom(r Record) Inquiry {
	return Inquiry{
		ID: r.ID, Name: r.String("name"), Email: r.String("email"),
		Subject: r.String("subject"), Message: r.String("message"), Timestamp: r.Timestamp(),
	}
}

type Order struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Plan      string
	Message   string
	Timestamp int64
}

func OrderFrom(r Record) Order {
	return Order{
		ID: r.ID, Name: r.String("name"), Email: r.String("email"), Phone: r.String("phone"),
		Plan: r.String("plan"), Message: r.String("message"), Timestamp: r.Timestamp(),
	}
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
