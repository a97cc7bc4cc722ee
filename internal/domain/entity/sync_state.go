package entity

// SyncState is the last address and title a window controller rendered.
// It lets repeated events for an unchanged page skip re-rendering.
type SyncState struct {
	LastURL   string
	LastTitle string
	synced    bool
}

// Matches reports whether url and title are what was last rendered.
func (s *SyncState) Matches(url, title string) bool {
	return s.synced && s.LastURL == url && s.LastTitle == title
}

// Record stores url and title as the last rendered pair.
func (s *SyncState) Record(url, title string) {
	s.LastURL = url
	s.LastTitle = title
	s.synced = true
}
