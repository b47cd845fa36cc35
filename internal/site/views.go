// Package site builds the view models of the public page. Every surface is a
// pure function of the current live list; services, projects and
// testimonials render built-in records ahead of the live ones.
package site

import (
	"html/template"

	"github.com/bwservices06-art/bwservicesweb/internal/content"
)

type ServiceCard struct {
	ID          string
	Title       string
	Description template.HTML
	Icon        string
}

// Services renders the service grid.
func Services(live []content.Record) []ServiceCard {
	recs := content.Effective(content.KindService, live)
	out := make([]ServiceCard, 0, len(recs))
	for _, r := range recs {
		s := content.ServiceFrom(r)
		out = append(out, ServiceCard{
			ID:          s.ID,
			Title:       s.Title,
			Description: Markdown(s.Description),
			Icon:        content.ServiceIcon(s.Icon),
		})
	}
	return out
}

type ProjectCard struct {
	ID          string
	Title       string
	Description string
	Image       string
	Link        string
	Tags        []string
}

// Projects renders the portfolio grid.
func Projects(live []content.Record) []ProjectCard {
	recs := content.Effective(content.KindProject, live)
	out := make([]ProjectCard, 0, len(recs))
	for _, r := range recs {
		p := content.ProjectFrom(r)
		out = append(out, ProjectCard{
			ID: p.ID, Title: p.Title, Description: p.Description,
			Image: p.Image, Link: p.Link, Tags: p.Tags,
		})
	}
	return out
}

type TestimonialCard struct {
	ID      string
	Name    string
	Role    string
	Content string
	// Stars has one entry per rating mark.
	Stars []struct{}
}

// Testimonials renders the testimonial carousel.
func Testimonials(live []content.Record) []TestimonialCard {
	recs := content.Effective(content.KindTestimonial, live)
	out := make([]TestimonialCard, 0, len(recs))
	for _, r := range recs {
		t := content.TestimonialFrom(r)
		out = append(out, TestimonialCard{
			ID: t.ID, Name: t.Name, Role: t.Role, Content: t.Content,
			Stars: make([]struct{}, t.Rating),
		})
	}
	return out
}

// Pricing renders the plan table. No fallback.
func Pricing(live []content.Record) []content.PricingPlan {
	out := make([]content.PricingPlan, 0, len(live))
	for _, r := range live {
		out = append(out, content.PricingPlanFrom(r))
	}
	return out
}

// PlanNames lists plan names for the order form's plan selector.
func PlanNames(plans []content.PricingPlan) []string {
	out := make([]string, 0, len(plans))
	for _, p := range plans {
		if p.Name != "" {
			out = append(out, p.Name)
		}
	}
	return out
}

type DeveloperCard struct {
	content.Developer
	Bio template.HTML
}

// Developers renders the team section. No fallback.
func Developers(live []content.Record) []DeveloperCard {
	out := make([]DeveloperCard, 0, len(live))
	for _, r := range live {
		d := content.DeveloperFrom(r)
		out = append(out, DeveloperCard{Developer: d, Bio: Markdown(d.Bio)})
	}
	return out
}

type FAQItem struct {
	ID       string
	Question string
	Answer   template.HTML
}

// FAQs renders the accordion. No fallback.
func FAQs(live []content.Record) []FAQItem {
	out := make([]FAQItem, 0, len(live))
	for _, r := range live {
		f := content.FAQFrom(r)
		out = append(out, FAQItem{ID: f.ID, Question: f.Question, Answer: Markdown(f.Answer)})
	}
	return out
}

type ProcessItem struct {
	ID          string
	Step        int
	Title       string
	Description string
	Icon        string
}

// Process renders the numbered process timeline. No fallback.
func Process(live []content.Record) []ProcessItem {
	out := make([]ProcessItem, 0, len(live))
	for i, r := range live {
		p := content.ProcessStepFrom(r)
		out = append(out, ProcessItem{
			ID: p.ID, Step: i + 1, Title: p.Title,
			Description: p.Description, Icon: content.ProcessIcon(p.Icon),
		})
	}
	return out
}

// Hero renders the hero banner; empty fields take the built-in copy.
func Hero(rec content.Record) content.Hero {
	return content.HeroFrom(rec)
}

type SocialLink struct {
	Name string
	URL  string
}

type ContactInfo struct {
	content.Settings
	Socials []SocialLink
}

// Contact renders the contact block and footer. Social links are listed only
// when set.
func Contact(rec content.Record) ContactInfo {
	s := content.SettingsFrom(rec)
	c := ContactInfo{Settings: s}
	for _, l := range []SocialLink{
		{"YouTube", s.SocialYoutube},
		{"Instagram", s.SocialInstagram},
		{"LinkedIn", s.SocialLinkedin},
		{"WhatsApp", s.SocialWhatsapp},
		{"Telegram", s.SocialTelegram},
	} {
		if l.URL != "" {
			c.Socials = append(c.Socials, l)
		}
	}
	return c
}

// Page is everything the public page template needs.
type Page struct {
	Hero         content.Hero
	Services     []ServiceCard
	Projects     []ProjectCard
	Testimonials []TestimonialCard
	Pricing      []content.PricingPlan
	PlanNames    []string
	Developers   []DeveloperCard
	FAQs         []FAQItem
	Process      []ProcessItem
	Contact      ContactInfo
}

// BuildPage assembles the page from the live cache.
func BuildPage(l *Live) Page {
	plans := Pricing(l.List(content.KindPricingPlan.Path()))
	return Page{
		Hero:         Hero(l.Single(content.KindHero.Path())),
		Services:     Services(l.List(content.KindService.Path())),
		Projects:     Projects(l.List(content.KindProject.Path())),
		Testimonials: Testimonials(l.List(content.KindTestimonial.Path())),
		Pricing:      plans,
		PlanNames:    PlanNames(plans),
		Developers:   Developers(l.List(content.KindDeveloper.Path())),
		FAQs:         FAQs(l.List(content.KindFAQ.Path())),
		Process:      Process(l.List(content.KindProcessStep.Path())),
		Contact:      Contact(l.Single(content.KindSettings.Path())),
	}
}

// PublicPaths are the store paths the public page binds to.
func PublicPaths() []string {
	return []string{
		content.KindHero.Path(),
		content.KindService.Path(),
		content.KindProject.Path(),
		content.KindTestimonial.Path(),
		content.KindPricingPlan.Path(),
		content.KindDeveloper.Path(),
		content.KindFAQ.Path(),
		content.KindProcessStep.Path(),
		content.KindSettings.Path(),
	}
}
