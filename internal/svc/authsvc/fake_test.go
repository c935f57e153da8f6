package authsvc

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/appstore/internal/svc/accountrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/appstore/pkg/cache"
	"github.com/yusufsyaifudin/appstore/pkg/mailclient"
	"golang.org/x/crypto/bcrypt"
)

type seqUID struct {
	mu sync.Mutex
	n  uint64
}

func (s *seqUID) NextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n, nil
}

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]accountrepo.Account
}

var _ accountrepo.Repo = (*memAccountRepo)(nil)

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: map[int64]accountrepo.Account{}}
}

func (m *memAccountRepo) Create(_ context.Context, in accountrepo.InputCreate) (out accountrepo.OutCreate, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == strings.ToLower(in.Account.Email) {
			err = accountrepo.ErrDuplicate
			return
		}
	}

	m.accounts[in.Account.ID] = in.Account
	out.Account = in.Account
	return
}

func (m *memAccountRepo) GetByID(_ context.Context, in accountrepo.InputGetByID) (out accountrepo.OutGetByID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[in.ID]
	if !ok {
		err = accountrepo.ErrNotFound
		return
	}

	out.Account = a
	return
}

func (m *memAccountRepo) GetByEmail(_ context.Context, in accountrepo.InputGetByEmail) (out accountrepo.OutGetByEmail, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Email == strings.ToLower(in.Email) {
			out.Account = a
			return
		}
	}

	err = accountrepo.ErrNotFound
	return
}

func (m *memAccountRepo) Update(_ context.Context, in accountrepo.InputUpdate) (out accountrepo.OutUpdate, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[in.Account.ID]
	if !ok {
		err = accountrepo.ErrNotFound
		return
	}

	a.Name, a.Language, a.Avatar, a.UpdatedAt = in.Account.Name, in.Account.Language, in.Account.Avatar, in.Account.UpdatedAt
	m.accounts[a.ID] = a
	out.Account = a
	return
}

func (m *memAccountRepo) SetVerified(_ context.Context, in accountrepo.InputSetVerified) (out accountrepo.OutSetVerified, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[in.ID]
	if !ok {
		err = accountrepo.ErrNotFound
		return
	}

	a.IsVerified, a.UpdatedAt = true, in.UpdatedAt
	m.accounts[a.ID] = a
	out.Account = a
	return
}

type recordMailer struct {
	mu   sync.Mutex
	sent []mailclient.Message
	err  error
}

func (r *recordMailer) Send(_ context.Context, msg mailclient.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordMailer) Close() error { return nil }

type fixture struct {
	svc      *DefaultService
	accounts *memAccountRepo
	sessions sessionrepo.Repo
	mailer   *recordMailer
	tokens   *TokenIssuer
}

func newFixture(t *testing.T, enforceSession bool) *fixture {
	mem, err := cache.NewInMemory(0)
	require.NoError(t, err)

	sessions, err := sessionrepo.NewCacheStore(sessionrepo.CacheStoreConfig{Cache: mem, CachePrefixKey: "session"})
	require.NoError(t, err)

	tokens, err := NewTokenIssuer("test-secret", 0)
	require.NoError(t, err)

	f := &fixture{
		accounts: newMemAccountRepo(),
		sessions: sessions,
		mailer:   &recordMailer{},
		tokens:   tokens,
	}

	f.svc, err = New(DefaultServiceConfig{
		UIDGen:         &seqUID{},
		AccountRepo:    f.accounts,
		SessionRepo:    f.sessions,
		Tokens:         tokens,
		Mailer:         f.mailer,
		MailFrom:       "noreply@appstore.test",
		PublicBaseURL:  "https://appstore.test",
		EnforceSession: enforceSession,
		BcryptCost:     bcrypt.MinCost,
	})
	require.NoError(t, err)
	return f
}
