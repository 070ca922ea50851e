package internal

import "strings"

// CategoryRule maps a label to the keyword set that claims it. Rules are
// evaluated in declaration order and the first match wins, so tie-break
// priority is the position in the table, not anything implicit.
type CategoryRule struct {
	Label    string
	Keywords []string
	Color    string
}

const CategoryOther = "other"

var categoryRules = []CategoryRule{
	{"javascript", []string{"javascript", "js", "node", "npm", "react", "vue", "angular", "typescript", "es6"}, "#f7df1e"},
	{"python", []string{"python", "py", "django", "flask", "pandas", "numpy", "pip", "conda"}, "#3776ab"},
	{"web", []string{"html", "css", "web", "frontend", "backend", "api", "http", "cors", "websocket"}, "#61dafb"},
	{"database", []string{"sql", "mysql", "mongodb", "redis", "database", "query", "schema", "orm"}, "#336791"},
	{"devops", []string{"docker", "kubernetes", "nginx", "deployment", "ci/cd", "jenkins", "git", "github"}, "#326ce5"},
	{"ai-ml", []string{"ai", "machine learning", "deep learning", "tensorflow", "pytorch", "model", "neural"}, "#ff6f00"},
	{"tooling", []string{"linux", "shell", "bash", "terminal", "vim", "vscode", "config", "setup"}, "#4caf50"},
	{"troubleshooting", []string{"error", "bug", "fix", "debug", "troubleshoot", "issue", "problem", "solution"}, "#f44336"},
	{"performance", []string{"optimize", "performance", "speed", "memory", "cpu", "cache", "profiling"}, "#ff9800"},
	{CategoryOther, nil, "#9e9e9e"},
}

// DetectCategory returns the first label whose keyword set matches the
// text (case-insensitive substring), or "other".
func DetectCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Label
			}
		}
	}
	return CategoryOther
}

func CategoryColor(label string) string {
	for _, rule := range categoryRules {
		if rule.Label == label {
			return rule.Color
		}
	}
	return "#9e9e9e"
}

// CategoryLabels returns the fixed label set in priority order.
func CategoryLabels() []string {
	labels := make([]string, len(categoryRules))
	for i, rule := range categoryRules {
		labels[i] = rule.Label
	}
	return labels
}

type tagRule struct {
	Keywords []string
	Name     string
	Color    string
}

var specialTagRules = []tagRule{
	{[]string{"error", "bug", "problem"}, "problem", "#ff4444"},
	{[]string{"optimize", "performance"}, "optimization", "#44ff44"},
	{[]string{"tutorial", "how to"}, "tutorial", "#4444ff"},
	{[]string{"config", "setup"}, "setup", "#ff8844"},
	{[]string{"api", "interface"}, "api", "#8844ff"},
}

// importanceKeywords raise a session's importance score when present in
// its summary.
var importanceKeywords = []string{"optimize", "solution", "fix", "best practice", "workaround"}

// compressionKeepKeywords mark lines that survive compression intact.
var compressionKeepKeywords = []string{"solution", "error", "fix", "problem", "issue", "optimize", "config", "install"}
