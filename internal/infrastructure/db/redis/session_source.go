package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// SessionSource implements ports.SessionSource against the identity
// provider's access tokens. The token itself is the session: it is verified
// locally (HS256, shared provider secret) and its claims become the Session.
// Redis adds two things the token cannot carry:
//
//   - a revocation marker (session:revoked:<sub>) so server-side sign-out
//     takes effect before the token expires, and
//   - a pub/sub channel (auth:session-changed:<sub>) delivering
//     session-change notifications to subscribed guards.
type SessionSource struct {
	client    *redis.Client
	jwtSecret string
	log       zerolog.Logger
}

func NewSessionSource(client *redis.Client, jwtSecret string, log zerolog.Logger) *SessionSource {
	return &SessionSource{client: client, jwtSecret: jwtSecret, log: log}
}

func (s *SessionSource) Resolve(ctx context.Context, accessToken string) (*domain.Session, error) {
	if accessToken == "" {
		return nil, nil
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid access token", domain.ErrSessionRetrieval)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: token missing subject", domain.ErrSessionRetrieval)
	}
	email, _ := claims["email"].(string)
	metadata, _ := claims["user_metadata"].(map[string]any)

	// The marker is advisory: if Redis is down the token still resolves,
	// and the portal degrades to token-lifetime sessions.
	revoked, err := s.client.Exists(ctx, revokedKey(sub)).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("session revocation check unavailable")
	} else if revoked > 0 {
		return nil, nil
	}

	return &domain.Session{UserID: sub, Email: email, Metadata: metadata}, nil
}

func (s *SessionSource) Subscribe(ctx context.Context, authUserID string, onChange func()) (func(), error) {
	pubsub := s.client.Subscribe(ctx, changeChannel(authUserID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("session subscribe: %w", err)
	}

	done := make(chan struct{})
	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				onChange()
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return unsubscribe, nil
}

func revokedKey(authUserID string) string {
	return "session:revoked:" + authUserID
}

func changeChannel(authUserID string) string {
	return "auth:session-changed:" + authUserID
}
