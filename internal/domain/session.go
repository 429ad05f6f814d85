package domain

// Session represents the currently authenticated user.
// A session exists if and only if a valid bearer token is persisted;
// FirstTime=true means the user has not completed the onboarding survey yet.
type Session struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	FirstTime bool   `json:"firstTime"`
}

// SessionPatch carries a partial session update. Nil fields are left untouched
// by Apply, giving the shallow-merge semantics optimistic UI updates rely on.
type SessionPatch struct {
	Email     *string
	Nickname  *string
	AvatarURL *string
	FirstTime *bool
}

// Apply shallow-merges the patch into the session.
func (s *Session) Apply(p SessionPatch) {
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Nickname != nil {
		s.Nickname = *p.Nickname
	}
	if p.AvatarURL != nil {
		s.AvatarURL = *p.AvatarURL
	}
	if p.FirstTime != nil {
		s.FirstTime = *p.FirstTime
	}
}

// Name returns the best available display name for the user.
func (s Session) Name() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Email
}
