package content

// Built-in fallback content. Services, projects and testimonials render these
// records ahead of the live ones; they are not store records and so cannot be
// edited or deleted from the admin console.

var defaultServices = []Record{
	NewRecord("app-dev", map[string]any{
		"title":       "App Development",
		"description": "Native and cross-platform mobile applications built with React Native and Flutter for seamless performance.",
		"icon":        "Smartphone",
	}),
	NewRecord("full-stack", map[string]any{
		"title":       "Full Stack Development",
		"description": "Scalable web applications using the MERN stack (MongoDB, Express, React, Node.js) and Next.js.",
		"icon":        "Code2",
	}),
	NewRecord("college-projects", map[string]any{
		"title":       "College Projects",
		"description": "Complete guidance and development support for final year engineering and computer science projects.",
		"icon":        "GraduationCap",
	}),
	NewRecord("report-writing", map[string]any{
		"title":       "Report Writing",
		"description": "Professional documentation, project reports, and thesis writing services adhering to academic standards.",
		"icon":        "FileText",
	}),
	NewRecord("research-paper", map[string]any{
		"title":       "Research Paper",
		"description": "Assistance with writing, formatting, and publishing research papers in IEEE, Springer, and other journals.",
		"icon":        "BookOpen",
	}),
}

var defaultTestimonials = []Record{
	NewRecord("rahul-sharma", map[string]any{
		"name":    "Rahul Sharma",
		"role":    "Founder, TechSolutions India",
		"content": "BW Services delivered our e-commerce platform well within the deadline. The UI is smooth and the backend is robust. Highly recommended!",
		"rating":  float64(5),
	}),
	NewRecord("priya-patel", map[string]any{
		"name":    "Priya Patel",
		"role":    "Marketing Head, DigitalGrowth",
		"content": "The team helped us with our company website and SEO. We saw a 40% increase in traffic within the first month. Excellent service.",
		"rating":  float64(5),
	}),
	NewRecord("amit-verma", map[string]any{
		"name":    "Amit Verma",
		"role":    "Student, Pune University",
		"content": "I was struggling with my final year Android project. Sham and his team guided me through the entire process and I scored an A+.",
		"rating":  float64(5),
	}),
}

const projectLink = "https://github.com/shampatil23"

var defaultProjects = []Record{
	NewRecord("arcwell", map[string]any{
		"title":       "ArcWell AI",
		"description": "An AI-powered wellness platform offering personalized health insights and tracking.",
		"image":       "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?q=80&w=2070&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "Next.js, AI, Tailwind",
	}),
	NewRecord("ks-esports", map[string]any{
		"title":       "KS ESPORTS",
		"description": "A dynamic esports tournament platform for gamers to compete and win prizes.",
		"image":       "https://images.unsplash.com/photo-1542751371-adc38448a05e?q=80&w=2070&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "React, Firebase, Gaming",
	}),
	NewRecord("woshild", map[string]any{
		"title":       "Woshild",
		"description": "A modern e-commerce solution for sustainable fashion brands.",
		"image":       "https://images.unsplash.com/photo-1441986300917-64674bd600d8?q=80&w=2070&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "Shopify, Liquid, CSS",
	}),
	NewRecord("greenroots", map[string]any{
		"title":       "GreenRoots",
		"description": "An agricultural tech app connecting farmers directly with consumers.",
		"image":       "https://images.unsplash.com/photo-1625246333195-f8196812c850?q=80&w=2070&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "Flutter, Node.js, MongoDB",
	}),
	NewRecord("fitness-tracker", map[string]any{
		"title":       "Fitness Tracker",
		"description": "A comprehensive workout and diet tracking application.",
		"image":       "https://images.unsplash.com/photo-1461896836934-ffe607ba8211?q=80&w=2070&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "React Native, Redux",
	}),
	NewRecord("flashcard-quiz", map[string]any{
		"title":       "Flashcard Quiz App",
		"description": "An interactive learning tool for students to create and study flashcards.",
		"image":       "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?q=80&w=1974&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "React, TypeScript",
	}),
	NewRecord("random-quote", map[string]any{
		"title":       "Random Quote Generator",
		"description": "A simple yet elegant app that serves daily inspirational quotes.",
		"image":       "https://images.unsplash.com/photo-1555421689-491a97ff2040?q=80&w=2070&auto=format&fit=crop",
		"link":        projectLink,
		"tags":        "JavaScript, API",
	}),
}

// DefaultHero is the hero copy used for every field the store leaves empty.
var DefaultHero = Hero{
	Badge:    "Available for new projects",
	Title1:   "Building digital",
	Title2:   "experiences",
	Title3:   "that matter.",
	Subtitle: "We help brands and businesses create impactful online presences through strategic design and cutting-edge development.",
	Btn1Text: "Start a Project",
	Btn1Link: "#contact",
	Btn2Text: "View Work",
	Btn2Link: "#work",
}

// DefaultSettings holds the contact fallbacks shown before settings are saved.
var DefaultSettings = Settings{
	WebsiteName:     "BW Services",
	ContactEmail:    "hello@hirecoders.dev",
	ContactPhone:    "+1 (555) 123-4567",
	ContactLocation: "Pune, India",
}

// Defaults returns a copy of the fallback records of k. Kinds without
// fallback content return nil.
func Defaults(k Kind) []Record {
	var src []Record
	switch k {
	case KindService:
		src = defaultServices
	case KindProject:
		src = defaultProjects
	case KindTestimonial:
		src = defaultTestimonials
	default:
		return nil
	}
	out := make([]Record, len(src))
	for i, r := range src {
		out[i] = r.Clone()
	}
	return out
}

// Effective is the list a render surface displays: the defaults of k followed
// by the live records. Live records never replace defaults.
func Effective(k Kind, live []Record) []Record {
	d := Defaults(k)
	out := make([]Record, 0, len(d)+len(live))
	out = append(out, d...)
	return append(out, live...)
}
