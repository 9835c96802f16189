package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhive/notify/internal/modules/notification/domain"
)

type notificationRepoMock struct {
	createFn         func(context.Context, *domain.Notification) error
	listFn           func(context.Context, uuid.UUID, int, int) ([]domain.Notification, error)
	markReadFn       func(context.Context, uuid.UUID, uuid.UUID, time.Time) error
	markUnreadFn     func(context.Context, uuid.UUID, uuid.UUID) error
	markAllReadFn    func(context.Context, uuid.UUID, *domain.Kind, time.Time) (int64, error)
	deleteFn         func(context.Context, uuid.UUID, uuid.UUID) error
	unreadCountFn    func(context.Context, uuid.UUID) (int, error)
	purgeOlderThanFn func(context.Context, time.Time) (int64, error)
}

func (m notificationRepoMock) Create(ctx context.Context, n *domain.Notification) error {
	return m.createFn(ctx, n)
}

func (m notificationRepoMock) ListByRecipient(ctx context.Context, recipient uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return m.listFn(ctx, recipient, limit, offset)
}

func (m notificationRepoMock) MarkRead(ctx context.Context, id, recipient uuid.UUID, at time.Time) error {
	return m.markReadFn(ctx, id, recipient, at)
}

func (m notificationRepoMock) MarkUnread(ctx context.Context, id, recipient uuid.UUID) error {
	return m.markUnreadFn(ctx, id, recipient)
}

func (m notificationRepoMock) MarkAllRead(ctx context.Context, recipient uuid.UUID, kind *domain.Kind, asOf time.Time) (int64, error) {
	return m.markAllReadFn(ctx, recipient, kind, asOf)
}

func (m notificationRepoMock) Delete(ctx context.Context, id, recipient uuid.UUID) error {
	return m.deleteFn(ctx, id, recipient)
}

func (m notificationRepoMock) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	return m.unreadCountFn(ctx, recipient)
}

func (m notificationRepoMock) PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.purgeOlderThanFn(ctx, cutoff)
}

type publisherMock struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *publisherMock) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *publisherMock) published() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchService_Dispatch(t *testing.T) {
	recipient := uuid.New()
	sender := uuid.New()

	t.Run("success persists rendered record and pushes", func(t *testing.T) {
		var captured *domain.Notification
		repo := notificationRepoMock{
			createFn: func(_ context.Context, n *domain.Notification) error {
				captured = n
				return nil
			},
		}
		pub := &publisherMock{}
		svc := NewDispatchService(repo, pub, time.Second, testLogger())

		id, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindJobApplication,
			Recipient: recipient,
			Sender:    &sender,
			Context: domain.ContextMap{
				"worker_name": "Taro",
				"job_title":   "Landing Page",
			},
		})
		require.NoError(t, err)
		require.NotNil(t, captured)
		assert.Equal(t, id, captured.ID)
		assert.Equal(t, recipient, captured.Recipient)
		assert.Equal(t, &sender, captured.Sender)
		assert.Equal(t, "新しい応募があります", captured.Title)
		assert.Equal(t, "Taroさんが「Landing Page」に応募しました。", captured.Message)
		assert.Equal(t, domain.PriorityNormal, captured.Priority)
		assert.False(t, captured.IsRead)
		assert.Nil(t, captured.ReadAt)
		assert.False(t, captured.CreatedAt.IsZero())

		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventNewNotification, events[0].Type)
		assert.Equal(t, captured, events[0].Notification)
	})

	t.Run("empty recipient fails", func(t *testing.T) {
		svc := NewDispatchService(notificationRepoMock{}, &publisherMock{}, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindJobApplication,
			Recipient: uuid.Nil,
		})
		require.ErrorIs(t, err, domain.ErrEmptyRecipient)
	})

	t.Run("self notification fails", func(t *testing.T) {
		svc := NewDispatchService(notificationRepoMock{}, &publisherMock{}, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindNewMessage,
			Recipient: recipient,
			Sender:    &recipient,
			Context:   domain.ContextMap{"sender_name": "Taro"},
		})
		require.ErrorIs(t, err, domain.ErrSelfNotification)
	})

	t.Run("system announcement may come from the recipient's own id", func(t *testing.T) {
		repo := notificationRepoMock{
			createFn: func(context.Context, *domain.Notification) error { return nil },
		}
		svc := NewDispatchService(repo, &publisherMock{}, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindSystemAnnouncement,
			Recipient: recipient,
			Sender:    &recipient,
			Context:   domain.ContextMap{"announcement": "メンテナンスのお知らせ"},
		})
		require.NoError(t, err)
	})

	t.Run("unknown kind fails before any write", func(t *testing.T) {
		created := false
		repo := notificationRepoMock{
			createFn: func(context.Context, *domain.Notification) error {
				created = true
				return nil
			},
		}
		svc := NewDispatchService(repo, &publisherMock{}, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.Kind("job_posted"),
			Recipient: recipient,
		})
		require.ErrorIs(t, err, domain.ErrUnknownNotificationKind)
		assert.False(t, created)
	})

	t.Run("missing template field fails before any write", func(t *testing.T) {
		repo := notificationRepoMock{
			createFn: func(context.Context, *domain.Notification) error {
				t.Fatal("create must not be called")
				return nil
			},
		}
		svc := NewDispatchService(repo, &publisherMock{}, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindJobApplication,
			Recipient: recipient,
			Context:   domain.ContextMap{"worker_name": "Taro"},
		})
		require.ErrorIs(t, err, domain.ErrMissingTemplateField)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		repo := notificationRepoMock{
			createFn: func(context.Context, *domain.Notification) error {
				return errors.New("db down")
			},
		}
		pub := &publisherMock{}
		svc := NewDispatchService(repo, pub, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindJobApplication,
			Recipient: recipient,
			Context: domain.ContextMap{
				"worker_name": "Taro",
				"job_title":   "Landing Page",
			},
		})
		require.Error(t, err)
		assert.Empty(t, pub.published(), "nothing may be pushed for an unpersisted record")
	})

	t.Run("publisher failure is not surfaced", func(t *testing.T) {
		repo := notificationRepoMock{
			createFn: func(context.Context, *domain.Notification) error { return nil },
		}
		pub := &publisherMock{err: errors.New("no active connection")}
		svc := NewDispatchService(repo, pub, time.Second, testLogger())

		_, err := svc.Dispatch(context.Background(), DispatchInput{
			Kind:      domain.KindJobApplication,
			Recipient: recipient,
			Context: domain.ContextMap{
				"worker_name": "Taro",
				"job_title":   "Landing Page",
			},
		})
		require.NoError(t, err, "delivery channel failure must not fail the dispatch")
	})

	t.Run("duplicate dispatches create two records", func(t *testing.T) {
		var created []*domain.Notification
		repo := notificationRepoMock{
			createFn: func(_ context.Context, n *domain.Notification) error {
				created = append(created, n)
				return nil
			},
		}
		svc := NewDispatchService(repo, &publisherMock{}, time.Second, testLogger())

		in := DispatchInput{
			Kind:      domain.KindJobApplication,
			Recipient: recipient,
			Context: domain.ContextMap{
				"worker_name": "Taro",
				"job_title":   "Landing Page",
			},
		}
		first, err := svc.Dispatch(context.Background(), in)
		require.NoError(t, err)
		second, err := svc.Dispatch(context.Background(), in)
		require.NoError(t, err)

		require.Len(t, created, 2)
		assert.NotEqual(t, first, second)
	})
}
