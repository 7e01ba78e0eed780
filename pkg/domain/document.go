package domain

import "time"

// DocSection is one titled block of the strategy brief.
type DocSection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Done  bool   `json:"done"`
}

// Document is the strategy brief a session assembles: one section per
// Completeness Map key. The progress-builder writes it; the workflow graph
// only re-reads the Done flags to refresh the session. Last write wins.
type Document struct {
	SessionID string       `json:"session_id"`
	Title     string       `json:"title"`
	Sections  []DocSection `json:"sections"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewDocument creates an empty brief with the baseline sections in order.
func NewDocument(sessionID string) *Document {
	doc := &Document{
		SessionID: sessionID,
		Title:     "Strategy Brief",
		UpdatedAt: time.Now().UTC(),
	}
	for _, key := range BaselineSections() {
		doc.Sections = append(doc.Sections, DocSection{Key: key, Title: SectionTitle(key)})
	}
	return doc
}

// Section returns the section with the given key, or nil.
func (d *Document) Section(key string) *DocSection {
	for i := range d.Sections {
		if d.Sections[i].Key == key {
			return &d.Sections[i]
		}
	}
	return nil
}

// Upsert replaces the named section or appends it when missing.
func (d *Document) Upsert(key, title, body string, done bool) {
	if title == "" {
		title = SectionTitle(key)
	}
	if sec := d.Section(key); sec != nil {
		sec.Title = title
		sec.Body = body
		sec.Done = done
	} else {
		d.Sections = append(d.Sections, DocSection{Key: key, Title: title, Body: body, Done: done})
	}
	d.UpdatedAt = time.Now().UTC()
}

// Status returns the per-section done flags keyed by section key.
func (d *Document) Status() map[string]bool {
	out := make(map[string]bool, len(d.Sections))
	for _, sec := range d.Sections {
		out[sec.Key] = sec.Done
	}
	return out
}
