package models

import "time"

// DefaultUserProfileID is the fixed id of the singleton profile row.
const DefaultUserProfileID = "apr_default"

// UserProfile is the singleton user profile controlling the memory write
// gate and retrieval personalisation.
type UserProfile struct {
	ID                    string    `json:"id"`
	PreferredLanguages    []string  `json:"preferred_languages"`
	CommunicationStyle    string    `json:"communication_style"`
	PrivacyLevel          string    `json:"privacy_level"`
	MemoryCaptureEnabled  bool      `json:"memory_capture_enabled"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultUserProfile returns the default singleton row, used on first boot
// and after a reset that preserves the profile.
func DefaultUserProfile() *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		ID:                   DefaultUserProfileID,
		PreferredLanguages:   []string{"en"},
		CommunicationStyle:   "neutral",
		PrivacyLevel:         "standard",
		MemoryCaptureEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Summary flattens the profile into the single-line form C5's profile
// section injects into prompts.
func (p *UserProfile) Summary() string {
	langs := "none"
	if len(p.PreferredLanguages) > 0 {
		langs = p.PreferredLanguages[0]
		for _, l := range p.PreferredLanguages[1:] {
			langs += ", " + l
		}
	}
	s := "Languages: " + langs + "; Style: " + p.CommunicationStyle
	if !p.MemoryCaptureEnabled {
		s += "; memory capture is disabled"
	}
	return s
}
