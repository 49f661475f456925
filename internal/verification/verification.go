// Package verification issues and checks the one-time codes used by
// EMAIL evidence.  Codes live only in Redis with a short TTL and are
// consumed on first successful match; they are never written to the
// primary database.
package verification

import (
    "context"
    "crypto/rand"
    "errors"
    "fmt"
    "log"
    "math/big"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/letmebeesther/plan-prove/internal/certify"
)

// CodeStore holds pending codes keyed by user and address.
type CodeStore interface {
    Put(ctx context.Context, key, code string, ttl time.Duration) error
    Get(ctx context.Context, key string) (string, error)
    Del(ctx context.Context, key string) error
}

// CodeSender delivers a code to an address.  The production
// implementation would talk to an SMTP relay; LogSender below writes to
// the process log so the flow is exercisable without mail
// infrastructure.
type CodeSender interface {
    Send(ctx context.Context, address, code string) error
}

// LogSender logs the code instead of mailing it.
type LogSender struct{}

func (LogSender) Send(_ context.Context, address, code string) error {
    log.Printf("verification: code for %s is %s", address, code)
    return nil
}

// ErrStoreUnavailable is returned when no code store is reachable, for
// example when Redis is down.  EMAIL certification is unavailable then.
var ErrStoreUnavailable = errors.New("verification store unavailable")

// RedisCodeStore backs CodeStore with a Redis client.  A nil client
// reports ErrStoreUnavailable instead of panicking so the rest of the
// API keeps working without Redis.
type RedisCodeStore struct {
    Client *redis.Client
}

func (s RedisCodeStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
    if s.Client == nil {
        return ErrStoreUnavailable
    }
    return s.Client.Set(ctx, key, code, ttl).Err()
}

func (s RedisCodeStore) Get(ctx context.Context, key string) (string, error) {
    if s.Client == nil {
        return "", ErrStoreUnavailable
    }
    v, err := s.Client.Get(ctx, key).Result()
    if err == redis.Nil {
        return "", nil
    }
    return v, err
}

func (s RedisCodeStore) Del(ctx context.Context, key string) error {
    if s.Client == nil {
        return ErrStoreUnavailable
    }
    return s.Client.Del(ctx, key).Err()
}

// Service issues codes for allow-listed addresses and consumes them on
// evidence submission.  It satisfies certify.Verifier.
type Service struct {
    Store  CodeStore
    Sender CodeSender

    // AllowedDomains mirrors the certification allow-list so a code is
    // never sent to an address that could not be used anyway.
    AllowedDomains []string

    // TTL is how long an issued code stays valid.  Zero means 10m.
    TTL time.Duration
}

func key(userID uint64, address string) string {
    return fmt.Sprintf("emailcode:%d:%s", userID, strings.ToLower(address))
}

// Send issues a fresh six-digit code for the address, replacing any
// previous one.  Addresses outside the domain allow-list are rejected
// before any code is generated.
func (s *Service) Send(ctx context.Context, userID uint64, address string) error {
    address = strings.ToLower(strings.TrimSpace(address))
    at := strings.LastIndex(address, "@")
    if at < 0 {
        return certify.ErrDisallowedDomain
    }
    if !s.domainAllowed(address[at+1:]) {
        return certify.ErrDisallowedDomain
    }

    code, err := sixDigits()
    if err != nil {
        return fmt.Errorf("verification: generate code: %w", err)
    }
    ttl := s.TTL
    if ttl <= 0 {
        ttl = 10 * time.Minute
    }
    if err := s.Store.Put(ctx, key(userID, address), code, ttl); err != nil {
        return fmt.Errorf("verification: store code: %w", err)
    }
    return s.Sender.Send(ctx, address, code)
}

// Consume checks the submitted code against the stored one and deletes
// it on match.  A missing, expired or mismatched code yields
// certify.ErrEmailNotVerified; the stored code survives a mismatch so a
// typo does not force a resend.
func (s *Service) Consume(ctx context.Context, userID uint64, address, code string) error {
    k := key(userID, address)
    stored, err := s.Store.Get(ctx, k)
    if err != nil {
        return fmt.Errorf("verification: read code: %w", err)
    }
    if stored == "" || stored != strings.TrimSpace(code) {
        return certify.ErrEmailNotVerified
    }
    if err := s.Store.Del(ctx, k); err != nil {
        log.Printf("verification: delete consumed code: %v", err)
    }
    return nil
}

func (s *Service) domainAllowed(domain string) bool {
    for _, d := range s.AllowedDomains {
        if strings.EqualFold(d, domain) {
            return true
        }
    }
    return false
}

func sixDigits() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%06d", n.Int64()), nil
}
