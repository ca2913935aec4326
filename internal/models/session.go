package models

import "time"

// Session is the per-user working context: the community the e-book targets and
// the single Document being edited. There is no history; every generation replaces it.
type Session struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CommunityName string    `gorm:"not null;default:''" json:"communityName"`
	Document      string    `gorm:"type:text;not null;default:''" json:"document"`
	// Generated is set by the first successful generation; Document may be edited down to "".
	Generated bool `gorm:"not null;default:false" json:"generated"`
	// Converted holds the last fixed-layout rendition of Document, if any.
	Converted []byte `json:"-"`
}

// HasDocument reports whether a document has been generated in this session,
// regardless of what the user has edited it to since.
func (s *Session) HasDocument() bool {
	return s.Generated
}

// HasConverted reports whether a fixed-layout artifact matching the current document exists.
func (s *Session) HasConverted() bool {
	return len(s.Converted) > 0
}

// SetGenerated stores a freshly generated document for community.
func (s *Session) SetGenerated(community, document string) {
	s.CommunityName = community
	s.Generated = true
	s.ReplaceDocument(document)
}

// ReplaceDocument overwrites the document. A previously converted artifact no longer
// matches and is dropped.
func (s *Session) ReplaceDocument(document string) {
	s.Document = document
	s.Converted = nil
}
