package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/dbtest"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/pagination"
)

type stubStore struct {
	rows     []models.Notification
	unread   int64
	found    bool
	err      error
	lastPage Query
	markedAt time.Time
}

func (s *stubStore) Page(_ context.Context, q Query) ([]models.Notification, error) {
	s.lastPage = q
	return s.rows, s.err
}

func (s *stubStore) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return s.unread, s.err
}

func (s *stubStore) MarkRead(_ context.Context, _, _ uuid.UUID, now time.Time) (bool, error) {
	s.markedAt = now
	return s.found, s.err
}

func (s *stubStore) MarkAllRead(_ context.Context, _ uuid.UUID, now time.Time) (int64, error) {
	s.markedAt = now
	return 3, s.err
}

func newTestService(t *testing.T, store Store) *service {
	t.Helper()
	svc, err := NewService(store)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.FixedZone("X", 3600)) }
	return impl
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestListTrimsBufferRowAndReturnsCursor(t *testing.T) {
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Notification{
		{ID: uuid.New(), Title: "Price Drop Alert!", CreatedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), Title: "Price Drop Alert!", CreatedAt: base.Add(time.Minute)},
	}
	store := &stubStore{rows: rows, unread: 5}
	svc := newTestService(t, store)

	res, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, rows[0].ID, res.Items[0].ID)
	assert.EqualValues(t, 5, res.UnreadCount)
	assert.Equal(t, 1, store.lastPage.Limit)
	assert.True(t, store.lastPage.UnreadOnly)

	next, err := pagination.ParseCursor(res.Cursor)
	require.NoError(t, err)
	assert.Equal(t, rows[0].ID, next.ID)
}

func TestListDefaultsAndValidation(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(t, store)

	res, err := svc.List(context.Background(), ListParams{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, store.lastPage.Limit)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Cursor)

	_, err = svc.List(context.Background(), ListParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	store.err = errors.New("db down")
	_, err = svc.List(context.Background(), ListParams{UserID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestMarkRead(t *testing.T) {
	store := &stubStore{found: true}
	svc := newTestService(t, store)

	require.NoError(t, svc.MarkRead(context.Background(), uuid.New(), uuid.New()))
	assert.Equal(t, time.UTC, store.markedAt.Location())

	store.found = false
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.MarkRead(context.Background(), uuid.New(), uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMarkAllRead(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(t, store)

	n, err := svc.MarkAllRead(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	store.err = errors.New("boom")
	_, err = svc.MarkAllRead(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = svc.MarkAllRead(context.Background(), uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceOverRepository(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	me := seedUser(t, conn)
	base := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedNotification(t, repo, me, "n", base.Add(time.Duration(i)*time.Minute))
	}
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.List(ctx, ListParams{UserID: me, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Cursor)
	assert.EqualValues(t, 3, first.UnreadCount)

	second, err := svc.List(ctx, ListParams{UserID: me, Limit: 2, Cursor: first.Cursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.Cursor)

	require.NoError(t, svc.MarkRead(ctx, me, second.Items[0].ID))
	after, err := svc.List(ctx, ListParams{UserID: me, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, after.Items, 2)
	assert.EqualValues(t, 2, after.UnreadCount)
}
