package content

// Icon names resolved at render time. Service cards fall back to Code2,
// everything else to Circle.
const (
	ServiceIconFallback = "Code2"
	IconFallback        = "Circle"
)

var serviceIcons = map[string]struct{}{
	"Code2": {}, "Smartphone": {}, "GraduationCap": {}, "FileText": {},
	"BookOpen": {}, "Layout": {}, "Server": {}, "Database": {},
}

var processIcons = map[string]struct{}{
	"Search": {}, "Lightbulb": {}, "PenTool": {}, "Code": {}, "Code2": {}, "Rocket": {},
	"CheckCircle": {}, "MessageSquare": {}, "Layers": {}, "Settings": {}, "Zap": {},
	"Target": {}, "Users": {}, "Calendar": {}, "Clipboard": {}, "Layout": {}, "Server": {},
	"Database": {}, "Smartphone": {}, "Monitor": {}, "Shield": {}, "TrendingUp": {},
	"Circle": {},
}

// ServiceIcon resolves a service icon name against the fixed service table.
func ServiceIcon(name string) string {
	if _, ok := serviceIcons[name]; ok {
		return name
	}
	return ServiceIconFallback
}

// ProcessIcon resolves a process-step icon name.
func ProcessIcon(name string) string {
	if _, ok := processIcons[name]; ok {
		return name
	}
	return IconFallback
}

// IconNames lists the names accepted by the admin icon field for k.
func IconNames(k Kind) []string {
	table := processIcons
	if k == KindService {
		table = serviceIcons
	}
	out := make([]string, 0, len(table))
	for n := range table {
		out = append(out, n)
	}
	return out
}
