package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhive/notify/internal/modules/chat/domain"
	notifapp "github.com/workhive/notify/internal/modules/notification/application"
	notifdomain "github.com/workhive/notify/internal/modules/notification/domain"
)

type messageRepoMock struct {
	createFn       func(context.Context, *domain.Message) error
	listByRoomFn   func(context.Context, uuid.UUID, int, int) ([]domain.Message, error)
	roomMembersFn  func(context.Context, uuid.UUID) ([]uuid.UUID, error)
	markRoomReadFn func(context.Context, uuid.UUID, uuid.UUID) (int64, error)
	unreadCountFn  func(context.Context, uuid.UUID) (int, error)
}

func (m messageRepoMock) Create(ctx context.Context, msg *domain.Message) error {
	return m.createFn(ctx, msg)
}

func (m messageRepoMock) ListByRoom(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	return m.listByRoomFn(ctx, roomID, limit, offset)
}

func (m messageRepoMock) RoomMembers(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	return m.roomMembersFn(ctx, roomID)
}

func (m messageRepoMock) MarkRoomRead(ctx context.Context, roomID, reader uuid.UUID) (int64, error) {
	return m.markRoomReadFn(ctx, roomID, reader)
}

func (m messageRepoMock) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.unreadCountFn(ctx, userID)
}

type dispatcherMock struct {
	fn func(ctx context.Context, in notifapp.DispatchInput) (uuid.UUID, error)
}

func (d dispatcherMock) Dispatch(ctx context.Context, in notifapp.DispatchInput) (uuid.UUID, error) {
	return d.fn(ctx, in)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChatService_SendMessage(t *testing.T) {
	roomID := uuid.New()
	sender := uuid.New()
	other := uuid.New()
	third := uuid.New()

	t.Run("notifies every other member", func(t *testing.T) {
		repo := messageRepoMock{
			roomMembersFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
				return []uuid.UUID{sender, other, third}, nil
			},
			createFn: func(context.Context, *domain.Message) error { return nil },
		}
		var notified []notifapp.DispatchInput
		dispatcher := dispatcherMock{
			fn: func(_ context.Context, in notifapp.DispatchInput) (uuid.UUID, error) {
				notified = append(notified, in)
				return uuid.New(), nil
			},
		}
		svc := NewChatService(repo, dispatcher, testLogger())

		msg, err := svc.SendMessage(context.Background(), roomID, sender, "Taro", "進捗どうですか")
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, roomID, msg.RoomID)
		assert.Equal(t, sender, msg.Sender)
		assert.False(t, msg.IsRead)

		require.Len(t, notified, 2)
		recipients := []uuid.UUID{notified[0].Recipient, notified[1].Recipient}
		assert.ElementsMatch(t, []uuid.UUID{other, third}, recipients)
		for _, in := range notified {
			assert.Equal(t, notifdomain.KindNewMessage, in.Kind)
			require.NotNil(t, in.Sender)
			assert.Equal(t, sender, *in.Sender)
			assert.Equal(t, "Taro", in.Context["sender_name"])
			assert.Equal(t, msg.ID.String(), in.Context["message_id"])
		}
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		svc := NewChatService(messageRepoMock{}, dispatcherMock{}, testLogger())
		_, err := svc.SendMessage(context.Background(), roomID, sender, "Taro", "")
		require.ErrorIs(t, err, domain.ErrEmptyMessage)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		repo := messageRepoMock{
			roomMembersFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
				return []uuid.UUID{other, third}, nil
			},
		}
		svc := NewChatService(repo, dispatcherMock{}, testLogger())
		_, err := svc.SendMessage(context.Background(), roomID, sender, "Taro", "hi")
		require.ErrorIs(t, err, domain.ErrNotRoomMember)
	})

	t.Run("notification failure does not fail the send", func(t *testing.T) {
		repo := messageRepoMock{
			roomMembersFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
				return []uuid.UUID{sender, other}, nil
			},
			createFn: func(context.Context, *domain.Message) error { return nil },
		}
		dispatcher := dispatcherMock{
			fn: func(context.Context, notifapp.DispatchInput) (uuid.UUID, error) {
				return uuid.Nil, errors.New("notification store down")
			},
		}
		svc := NewChatService(repo, dispatcher, testLogger())

		msg, err := svc.SendMessage(context.Background(), roomID, sender, "Taro", "hi")
		require.NoError(t, err)
		assert.NotNil(t, msg)
	})

	t.Run("store failure fails the send before any notification", func(t *testing.T) {
		repo := messageRepoMock{
			roomMembersFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
				return []uuid.UUID{sender, other}, nil
			},
			createFn: func(context.Context, *domain.Message) error { return errors.New("db down") },
		}
		dispatcher := dispatcherMock{
			fn: func(context.Context, notifapp.DispatchInput) (uuid.UUID, error) {
				t.Fatal("dispatch must not be called")
				return uuid.Nil, nil
			},
		}
		svc := NewChatService(repo, dispatcher, testLogger())

		_, err := svc.SendMessage(context.Background(), roomID, sender, "Taro", "hi")
		require.Error(t, err)
	})
}

func TestChatService_ListRoomMessages(t *testing.T) {
	roomID := uuid.New()
	member := uuid.New()

	repo := messageRepoMock{
		roomMembersFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{member}, nil
		},
		listByRoomFn: func(_ context.Context, _ uuid.UUID, limit, offset int) ([]domain.Message, error) {
			assert.Equal(t, 50, limit)
			assert.Equal(t, 0, offset)
			return []domain.Message{}, nil
		},
	}
	svc := NewChatService(repo, dispatcherMock{}, testLogger())

	_, err := svc.ListRoomMessages(context.Background(), roomID, member, 0, -1)
	require.NoError(t, err)

	_, err = svc.ListRoomMessages(context.Background(), roomID, uuid.New(), 10, 0)
	require.ErrorIs(t, err, domain.ErrNotRoomMember)
}

func TestChatService_MarkRoomRead(t *testing.T) {
	roomID := uuid.New()
	reader := uuid.New()

	repo := messageRepoMock{
		roomMembersFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{reader}, nil
		},
		markRoomReadFn: func(_ context.Context, gotRoom, gotReader uuid.UUID) (int64, error) {
			assert.Equal(t, roomID, gotRoom)
			assert.Equal(t, reader, gotReader)
			return 4, nil
		},
	}
	svc := NewChatService(repo, dispatcherMock{}, testLogger())

	marked, err := svc.MarkRoomRead(context.Background(), roomID, reader)
	require.NoError(t, err)
	assert.Equal(t, int64(4), marked)

	_, err = svc.MarkRoomRead(context.Background(), roomID, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotRoomMember)
}

func TestChatService_UnreadSource(t *testing.T) {
	repo := messageRepoMock{
		unreadCountFn: func(context.Context, uuid.UUID) (int, error) { return 5, nil },
	}
	svc := NewChatService(repo, dispatcherMock{}, testLogger())

	assert.Equal(t, "chat", svc.Name())
	count, err := svc.UnreadCount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
