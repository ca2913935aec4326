package auth

import (
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/models"
	"context"
	"errors"
	"github.com/samborkent/uuidv7"
	"golang.org/x/crypto/bcrypt"
	"time"
)

const passcodeFalse = "passcode false"

var ErrPasscode = errors.New(passcodeFalse)

type AuthService struct {
	*environment.Env

	// PasscodeHash is a bcrypt hash; empty means the tool is open.
	PasscodeHash string
}

// PasscodeRequired reports whether starting a session needs a passcode.
func (s *AuthService) PasscodeRequired() bool {
	return len(s.PasscodeHash) > 0
}

// VerifyPasscode checks passcode against the configured hash.
func (s *AuthService) VerifyPasscode(passcode string) error {
	if !s.PasscodeRequired() {
		return nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(s.PasscodeHash), []byte(passcode))
	if err != nil {
		return ErrPasscode
	}
	return nil
}

// StartSession creates an empty session with a fresh ID.
func (s *AuthService) StartSession(ctx context.Context) (models.Session, error) {
	session := models.Session{ID: uuidv7.New().String()}
	if err := s.CreateSession(ctx, &session); err != nil {
		return models.Session{}, err
	}
	s.IncSession("started")
	s.LogInfo(logging.GetLogTypeSession("session", session.ID), "session started")
	return session, nil
}

// EndSession destroys the session together with its document.
func (s *AuthService) EndSession(ctx context.Context, sessionId string) error {
	if err := s.DeleteSession(ctx, sessionId); err != nil {
		return err
	}
	s.IncSession("ended")
	s.LogInfo(logging.GetLogTypeSession("session", sessionId), "session ended")
	return nil
}

// PurgeIdleSessions removes sessions that were not touched for idleTimeout.
func (s *AuthService) PurgeIdleSessions(ctx context.Context, idleTimeout time.Duration) (int64, error) {
	removed, err := s.DeleteSessionsIdleSince(ctx, time.Now().Add(-idleTimeout))
	if err != nil {
		return 0, err
	}
	for i := int64(0); i < removed; i++ {
		s.IncSession("expired")
	}
	if removed > 0 {
		s.LogInfof(logging.GetLogTypeJanitor(), "removed %d idle session(s)", removed)
	}
	return removed, nil
}

// Hash creates a bcrypt hash suitable for the PasscodeHash setting.
func Hash(passcode string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
}
