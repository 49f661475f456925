package verification

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/letmebeesther/plan-prove/internal/certify"
)

type memStore struct {
    m map[string]string
}

func (s *memStore) Put(_ context.Context, key, code string, _ time.Duration) error {
    if s.m == nil {
        s.m = map[string]string{}
    }
    s.m[key] = code
    return nil
}

func (s *memStore) Get(_ context.Context, key string) (string, error) { return s.m[key], nil }

func (s *memStore) Del(_ context.Context, key string) error {
    delete(s.m, key)
    return nil
}

type captureSender struct {
    address string
    code    string
}

func (c *captureSender) Send(_ context.Context, address, code string) error {
    c.address, c.code = address, code
    return nil
}

func newTestService() (*Service, *memStore, *captureSender) {
    store := &memStore{}
    sender := &captureSender{}
    return &Service{
        Store:          store,
        Sender:         sender,
        AllowedDomains: []string{"corp.example"},
    }, store, sender
}

func TestSendAndConsume(t *testing.T) {
    svc, _, sender := newTestService()
    ctx := context.Background()

    if err := svc.Send(ctx, 1, "Dev@Corp.Example"); err != nil {
        t.Fatalf("Send: %v", err)
    }
    if sender.address != "dev@corp.example" {
        t.Fatalf("sent to %q, want normalized address", sender.address)
    }
    if len(sender.code) != 6 {
        t.Fatalf("code %q is not six digits", sender.code)
    }

    if err := svc.Consume(ctx, 1, "dev@corp.example", sender.code); err != nil {
        t.Fatalf("Consume: %v", err)
    }
    // Consumed on first use.
    if err := svc.Consume(ctx, 1, "dev@corp.example", sender.code); !errors.Is(err, certify.ErrEmailNotVerified) {
        t.Fatalf("second consume: err = %v, want ErrEmailNotVerified", err)
    }
}

func TestConsumeMismatchKeepsCode(t *testing.T) {
    svc, _, sender := newTestService()
    ctx := context.Background()

    if err := svc.Send(ctx, 1, "dev@corp.example"); err != nil {
        t.Fatalf("Send: %v", err)
    }
    if err := svc.Consume(ctx, 1, "dev@corp.example", "000000x"); !errors.Is(err, certify.ErrEmailNotVerified) {
        t.Fatalf("mismatch: err = %v, want ErrEmailNotVerified", err)
    }
    // A typo must not invalidate the real code.
    if err := svc.Consume(ctx, 1, "dev@corp.example", sender.code); err != nil {
        t.Fatalf("correct code after mismatch: %v", err)
    }
}

func TestSendDisallowedDomain(t *testing.T) {
    svc, store, _ := newTestService()

    err := svc.Send(context.Background(), 1, "me@gmail.example")
    if !errors.Is(err, certify.ErrDisallowedDomain) {
        t.Fatalf("err = %v, want ErrDisallowedDomain", err)
    }
    if len(store.m) != 0 {
        t.Fatal("code stored for disallowed address")
    }
}

func TestConsumeScopedToUser(t *testing.T) {
    svc, _, sender := newTestService()
    ctx := context.Background()

    if err := svc.Send(ctx, 1, "dev@corp.example"); err != nil {
        t.Fatalf("Send: %v", err)
    }
    if err := svc.Consume(ctx, 2, "dev@corp.example", sender.code); !errors.Is(err, certify.ErrEmailNotVerified) {
        t.Fatalf("another user consumed the code: err = %v", err)
    }
}
