package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/postbox/internal/core/domain"
	"github.com/vncsmyrnk/postbox/internal/core/ports"
)

// memStore is an in-memory ports.Store. WithinTx serialises units of work and
// restores the previous state when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users         map[uuid.UUID]domain.User
	refreshTokens map[string]domain.RefreshToken
	registrations map[uuid.UUID]domain.TempRegistration
	posts         map[uuid.UUID]domain.Post

	// errors injected into the next matching call
	usersErr error
	postsErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]domain.User),
		refreshTokens: make(map[string]domain.RefreshToken),
		registrations: make(map[uuid.UUID]domain.TempRegistration),
		posts:         make(map[uuid.UUID]domain.Post),
	}
}

func (s *memStore) Users() ports.UserRepository                 { return memUsers{s} }
func (s *memStore) RefreshTokens() ports.RefreshTokenRepository { return memRefreshTokens{s} }
func (s *memStore) Registrations() ports.RegistrationRepository { return memRegistrations{s} }
func (s *memStore) Posts() ports.PostRepository                 { return memPosts{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users := cloneMap(s.users)
	tokens := cloneMap(s.refreshTokens)
	regs := cloneMap(s.registrations)
	posts := cloneMap(s.posts)
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.users, s.refreshTokens, s.registrations, s.posts = users, tokens, regs, posts
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) addUser(username, email, passwordHash string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := domain.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u
}

func (s *memStore) userByEmail(email string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *memStore) registrationsFor(email string) []domain.TempRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TempRegistration
	for _, r := range s.registrations {
		if r.Email == email {
			out = append(out, r)
		}
	}
	return out
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.usersErr; err != nil {
		r.s.usersErr = nil
		return err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyTaken
		}
	}
	now := time.Now()
	user.ID = uuid.New()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := r.s.userByEmail(email)
	return ok, nil
}

func (r memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r memUsers) List(ctx context.Context) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r memUsers) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	for k, p := range r.s.posts {
		if p.UserID == id {
			delete(r.s.posts, k)
		}
	}
	for k, t := range r.s.refreshTokens {
		if t.UserID == id {
			delete(r.s.refreshTokens, k)
		}
	}
	return nil
}

type memRefreshTokens struct{ s *memStore }

func (r memRefreshTokens) Create(ctx context.Context, token *domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.refreshTokens[token.Token]; ok {
		return errors.New("duplicate refresh token")
	}
	r.s.refreshTokens[token.Token] = *token
	return nil
}

func (r memRefreshTokens) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.refreshTokens[token]
	if !ok {
		return nil, domain.ErrRefreshTokenNotFound
	}
	delete(r.s.refreshTokens, token)
	return &t, nil
}

func (r memRefreshTokens) Delete(ctx context.Context, token string) error {
	_, err := r.Consume(ctx, token)
	return err
}

func (r memRefreshTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.refreshTokens {
		if t.Expired(now) {
			delete(r.s.refreshTokens, k)
			n++
		}
	}
	return n, nil
}

type memRegistrations struct{ s *memStore }

func (r memRegistrations) FindPending(ctx context.Context, email string) (*domain.TempRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registrations {
		if reg.Email == email && !reg.Confirmed {
			return &reg, nil
		}
	}
	return nil, domain.ErrRegistrationNotFound
}

func (r memRegistrations) Upsert(ctx context.Context, reg *domain.TempRegistration, replaceBefore time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, old := range r.s.registrations {
		if old.Email != reg.Email || old.Confirmed {
			continue
		}
		if old.CreatedAt.After(replaceBefore) {
			return domain.ErrRegistrationInProgress
		}
		delete(r.s.registrations, id)
	}
	reg.ID = uuid.New()
	r.s.registrations[reg.ID] = *reg
	return nil
}

func (r memRegistrations) FindActive(ctx context.Context, email, secretKey string, now time.Time) (*domain.TempRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registrations {
		if reg.Email == email && reg.SecretKey == secretKey && !reg.Expired(now) {
			return &reg, nil
		}
	}
	return nil, domain.ErrRegistrationNotFound
}

func (r memRegistrations) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return domain.ErrRegistrationNotFound
	}
	reg.Confirmed = true
	r.s.registrations[id] = reg
	return nil
}

func (r memRegistrations) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.registrations[id]; !ok {
		return domain.ErrRegistrationNotFound
	}
	delete(r.s.registrations, id)
	return nil
}

func (r memRegistrations) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, reg := range r.s.registrations {
		if reg.Email == email {
			delete(r.s.registrations, id)
			n++
		}
	}
	return n, nil
}

func (r memRegistrations) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, reg := range r.s.registrations {
		if reg.Expired(now) {
			delete(r.s.registrations, id)
			n++
		}
	}
	return n, nil
}

type memPosts struct{ s *memStore }

func (r memPosts) Create(ctx context.Context, post *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.postsErr; err != nil {
		r.s.postsErr = nil
		return err
	}
	now := time.Now()
	post.ID = uuid.New()
	post.CreatedAt, post.UpdatedAt = now, now
	r.s.posts[post.ID] = *post
	return nil
}

func (r memPosts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return &p, nil
}

func (r memPosts) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Post{}
	for _, p := range r.s.posts {
		p := p
		if p.UserID == userID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memPosts) Update(ctx context.Context, post *domain.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[post.ID]; !ok {
		return domain.ErrPostNotFound
	}
	post.UpdatedAt = time.Now()
	r.s.posts[post.ID] = *post
	return nil
}

func (r memPosts) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.s.posts, id)
	return nil
}

// recordingSender captures messages and fails with err when set.
type recordingSender struct {
	mu   sync.Mutex
	sent []domain.EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) last() domain.EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return domain.EmailMessage{}
	}
	return r.sent[len(r.sent)-1]
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrAuthentication
	}
	return nil
}
