package v1

// Session is the client-facing view of a cached session.
type Session struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags,omitempty"`
	Importance   float64  `json:"importance"`
	LastActivity int64    `json:"lastActivity"`
}

// Template describes a reference template and how many cached sessions
// it currently matches.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MatchCount  int    `json:"matchCount"`
}
