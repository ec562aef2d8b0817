package main

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var errNoCharacter = errors.New("usage: /login <name>")

// session stands in for the game connection: a character is either logged
// in and able to chat, or not.
type session struct {
	mu       sync.Mutex
	name     string
	loggedIn bool
	since    time.Time
}

var clientSession = &session{}

func (s *session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Name is the current or most recent character.
func (s *session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *session) Since() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.since
}

// Login switches to name, or logs the last character back in when name is
// empty. Names are title-cased the way the server displays them.
func (s *session) Login(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name != "" {
		name = cases.Title(language.English).String(name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		name = s.name
	}
	if name == "" {
		return errNoCharacter
	}
	s.name = name
	s.loggedIn = true
	s.since = now
	return nil
}

func (s *session) Logout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.loggedIn
	s.loggedIn = false
	return was
}
