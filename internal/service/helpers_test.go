package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/testdb"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, data []byte, contentType, folder, filename string) (*storage.Object, error) {
	args := m.Called(ctx, data, contentType, folder, filename)
	obj, _ := args.Get(0).(*storage.Object)
	return obj, args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, path string) bool {
	return m.Called(ctx, path).Bool(0)
}

func (m *mockStorage) URLFor(path string) string {
	return "https://cdn.test/" + path
}

// uploads makes every Upload of filename succeed with a fixed path.
func (m *mockStorage) uploads(filename, path string) *mock.Call {
	return m.On("Upload", mock.Anything, mock.Anything, mock.Anything, storage.DefaultFolder, filename).
		Return(&storage.Object{Path: path, Size: 3, ContentType: "image/png"}, nil)
}

type sentEvent struct {
	Topic string
	Key   string
	Event Event
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentEvent{Topic: topic, Key: key, Event: event.(Event)})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		out = append(out, s.Event.Type)
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]string
	deleted []uint
}

func (f *fakeIndex) Upsert(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs == nil {
		f.docs = map[uint]string{}
	}
	f.docs[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type memCartCache struct {
	mu      sync.Mutex
	data    map[uint][]byte
	gets    int
	dropped []uint
	cleared int
}

func newMemCartCache() *memCartCache {
	return &memCartCache{data: map[uint][]byte{}}
}

func (c *memCartCache) Get(_ context.Context, userID uint) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.data[userID]
	return b, ok, nil
}

func (c *memCartCache) Set(_ context.Context, userID uint, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID] = data
	return nil
}

func (c *memCartCache) Invalidate(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	c.dropped = append(c.dropped, userID)
	return nil
}

func (c *memCartCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[uint][]byte{}
	c.cleared++
	return nil
}

func (c *memCartCache) has(userID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[userID]
	return ok
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testdb.Open(t)}
}

func seedCategory(t *testing.T, r *repo.GormRepo, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, r.CreateCategory(context.Background(), c))
	return c
}

func seedUser(t *testing.T, r *repo.GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }
