package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/repository"
	"github.com/verdant/sprout/pkg/cleanup"
	"github.com/verdant/sprout/pkg/entity"
	"github.com/verdant/sprout/pkg/passhash"
)

const defaultSessionTTL = 24 * time.Hour

type SessionService struct {
	repo repository.SessionsRepositoryI
	ttl  time.Duration
}

func NewSessionService(sessionsRepo repository.SessionsRepositoryI, ttl time.Duration) *SessionService {
	if sessionsRepo == nil {
		log.Fatal("provided nil sessionsRepo")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{
		repo: sessionsRepo,
		ttl:  ttl,
	}
}

// hashToken maps the opaque cookie value to the storage key. Only the hash is
// ever persisted.
func hashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func (ss *SessionService) Create(ctx context.Context, uid uuid.UUID) (string, *entity.Session, error) {
	tokenBytes, err := passhash.RandBytes(32)
	if err != nil {
		return "", nil, errors.New("generating session token error: " + err.Error())
	}
	csrfBytes, err := passhash.RandBytes(32)
	if err != nil {
		return "", nil, errors.New("generating csrf token error: " + err.Error())
	}
	token := base64.RawURLEncoding.EncodeToString(tokenBytes)
	session := entity.Session{
		TokenHash: hashToken(token),
		UserID:    uid,
		CSRFToken: base64.RawURLEncoding.EncodeToString(csrfBytes),
		ExpiresAt: time.Now().Add(ss.ttl),
	}
	if err = ss.repo.Create(ctx, &session); err != nil {
		return "", nil, errors.New("repository creating error: " + err.Error())
	}
	return token, &session, nil
}

func (ss *SessionService) Validate(ctx context.Context, token string) (*entity.Session, error) {
	session, err := ss.repo.Get(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, errorvalues.ErrSessionNotFound) {
			return nil, errorvalues.ErrSessionNotFound
		}
		return nil, errors.New("repository searching error: " + err.Error())
	}
	if !session.ExpiresAt.After(time.Now()) {
		// Expired rows are dropped opportunistically; the janitor catches the rest
		if err = ss.repo.Delete(ctx, session.TokenHash); err != nil && !errors.Is(err, errorvalues.ErrSessionNotFound) {
			slog.Warn("dropping expired session failed", slog.String("error", err.Error()))
		}
		return nil, errorvalues.ErrSessionExpired
	}
	return session, nil
}

func (ss *SessionService) Destroy(ctx context.Context, token string) error {
	err := ss.repo.Delete(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, errorvalues.ErrSessionNotFound) {
			return errorvalues.ErrSessionNotFound
		}
		return errors.New("repository deletion error: " + err.Error())
	}
	return nil
}

func (ss *SessionService) VerifyCSRF(session *entity.Session, token string) error {
	if session == nil || token == "" {
		return errorvalues.ErrInvalidCSRF
	}
	if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(token)) != 1 {
		return errorvalues.ErrInvalidCSRF
	}
	return nil
}

// StartJanitor launches the background sweep of expired sessions. The stop is
// registered as a cleanup job.
func (ss *SessionService) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				dropped, err := ss.repo.DeleteExpired(ctx, time.Now())
				if err != nil {
					slog.Warn("session janitor sweep failed", slog.String("error", err.Error()))
					continue
				}
				if dropped > 0 {
					slog.Info("session janitor sweep", slog.Int64("dropped", dropped))
				}
			}
		}
	}()
	cleanup.Register(&cleanup.Job{
		Name: "stopping session janitor",
		F: func() error {
			cancel()
			return nil
		},
	})
}
