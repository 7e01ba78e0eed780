package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

// MockStore does nothing; these tests only watch the lock map.
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, sessionID string, s *domain.Session) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		s := domain.NewSession(sid)
		_ = mgr.Save(ctx, sid, &s)
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("memory leak: %d lock entries remaining after delete", lockCount)
	}
}

// recordingLocker captures lock/unlock calls.
type recordingLocker struct {
	locked   []string
	unlocked int
	ttl      time.Duration
	fail     bool
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail {
		return nil, errors.New("lock held elsewhere")
	}
	l.locked = append(l.locked, key)
	l.ttl = ttl
	return func(ctx context.Context) error {
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLockerWrapsWork(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(&MockStore{}, WithLocker(locker))

	ran := false
	err := mgr.WithLock(context.Background(), "s1", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock failed: %v", err)
	}

	if !ran {
		t.Errorf("callback did not run")
	}
	if len(locker.locked) != 1 || locker.locked[0] != "s1" {
		t.Errorf("locked = %v", locker.locked)
	}
	if locker.unlocked != 1 {
		t.Errorf("unlocked = %d", locker.unlocked)
	}
	if locker.ttl != distributedLockTTL {
		t.Errorf("ttl = %s", locker.ttl)
	}
}

func TestManager_DistributedLockFailureBlocksWork(t *testing.T) {
	mgr := NewManager(&MockStore{}, WithLocker(&recordingLocker{fail: true}))

	ran := false
	err := mgr.WithLock(context.Background(), "s1", func(ctx context.Context) error {
		ran = true
		return nil
	})

	if err == nil {
		t.Fatalf("expected lock acquisition error")
	}
	if ran {
		t.Errorf("callback must not run without the distributed lock")
	}
}
