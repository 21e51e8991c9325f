// Package auth keeps role-based sessions for the web API. Teachers and
// admins log in with a shared passcode per role; students log in with
// their registered name. Sessions live in process memory only.
package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"englab/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("account is not active")
)

// Session is what a valid cookie resolves to. StudentID is zero for staff
// sessions.
type Session struct {
	Token     string    `json:"-"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	StudentID int64     `json:"student_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StudentDirectory resolves student logins by name.
type StudentDirectory interface {
	GetByName(name string) (model.Student, bool)
}

type ServiceConfig struct {
	AdminPassHash   string
	TeacherPassHash string
	SessionTTL      time.Duration
}

type Service struct {
	adminPassHash   string
	teacherPassHash string
	sessionTTL      time.Duration
	students        StudentDirectory
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

func NewService(cfg ServiceConfig, students StudentDirectory) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		adminPassHash:   cfg.AdminPassHash,
		teacherPassHash: cfg.TeacherPassHash,
		sessionTTL:      ttl,
		students:        students,
		now:             time.Now,
		sessions:        make(map[string]Session),
	}
}

// LoginStaff authenticates an admin or teacher with the role's passcode.
func (s *Service) LoginStaff(role, passcode string) (Session, error) {
	var hash string
	switch role {
	case RoleAdmin:
		hash = s.adminPassHash
	case RoleTeacher:
		hash = s.teacherPassHash
	default:
		return Session{}, ErrInvalidCredentials
	}
	if hash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.create(Session{Role: role, Name: role}), nil
}

// LoginStudent authenticates a student by registered name. Inactive
// students cannot log in.
func (s *Service) LoginStudent(name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrInvalidCredentials
	}
	st, ok := s.students.GetByName(name)
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if st.Status != model.StudentActive {
		return Session{}, ErrForbidden
	}
	return s.create(Session{Role: RoleStudent, Name: st.Name, StudentID: st.ID}), nil
}

// SessionByToken resolves a cookie token, pruning it when expired.
func (s *Service) SessionByToken(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, false
	}
	return sess, true
}

func (s *Service) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) create(sess Session) Session {
	sess.Token = uuid.NewString()
	sess.ExpiresAt = s.now().Add(s.sessionTTL)
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}
