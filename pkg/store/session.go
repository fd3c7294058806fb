package store

// StudentIdentity is one authenticated portal login. Never mutated in place;
// a new login replaces the whole value.
type StudentIdentity struct {
	Sid  string `json:"sid"`
	Name string `json:"name"`
	Temp string `json:"temp"`
}

// Session is the per-conversation state, keyed by an opaque session id. Only
// the agent executor writes to it, immediately after a successful login.
type Session struct {
	ID string `json:"id"` // conversation session id

	// Student is the current authenticated identity; nil means not logged in.
	Student *StudentIdentity `json:"student,omitempty"`

	// SavedStudents lists every identity that logged in during this
	// conversation, deduplicated by sid (first occurrence wins).
	SavedStudents []StudentIdentity `json:"saved_students,omitempty"`
}

func (s *Session) LoggedIn() bool {
	return s.Student != nil && s.Student.Sid != "" && s.Student.Temp != ""
}

// ApplyLogin records a successful login: current always updates, the saved
// list gains the identity only if its sid was not seen before.
func (s *Session) ApplyLogin(student StudentIdentity) {
	s.Student = &student

	for _, saved := range s.SavedStudents {
		if saved.Sid == student.Sid {
			return
		}
	}
	s.SavedStudents = append(s.SavedStudents, student)
}
