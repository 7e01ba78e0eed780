package loam

// DocumentMeta is the frontmatter of a stored strategy brief. Section
// bodies live in the markdown body; the frontmatter carries identity and
// per-section status so tooling can read progress without parsing prose.
// It uses "mapstructure" tags to match standard frontmatter/YAML keys.
type DocumentMeta struct {
	SessionID string          `json:"session_id" mapstructure:"session_id"`
	Title     string          `json:"title" mapstructure:"title"`
	UpdatedAt string          `json:"updated_at" mapstructure:"updated_at"`
	Sections  []SectionStatus `json:"sections" mapstructure:"sections"`
}

// SectionStatus records one section's place and completion in the brief.
type SectionStatus struct {
	Key   string `json:"key" mapstructure:"key"`
	Title string `json:"title" mapstructure:"title"`
	Done  bool   `json:"done" mapstructure:"done"`
}
