package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestActivityService_ItemCreationFeed(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)

	item, err := env.items.CreateItem(ctx, admin, CreateItemRequest{
		Title: "Leviathan",
		Tags:  []TagInput{{Name: "politics"}, {Name: "philosophy"}},
	})
	require.NoError(t, err)

	feed, err := env.activity.Feed(ctx, admin, 0)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	actions := map[domain.ActionType]int{}
	for _, e := range feed {
		actions[e.ActionType]++
		assert.False(t, e.Seen)
		assert.Equal(t, admin.ID, e.UserID)
	}
	assert.Equal(t, 1, actions[domain.ActionItemAdded])
	assert.Equal(t, 2, actions[domain.ActionTagApplied])

	for _, e := range feed {
		if e.ActionType == domain.ActionItemAdded {
			assert.Equal(t, item.ID, e.EntityID)
			assert.Equal(t, domain.EntityItem, e.EntityType)
		}
	}
}

func TestActivityService_MarkSeen(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)
	alice := env.createMember(t, admin, "alice")

	env.activity.Record(ctx, admin.ID, domain.ActionItemAdded, "i_whatever000000", domain.EntityItem)

	feed, err := env.activity.Feed(ctx, alice, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	activityID := feed[0].ID

	require.NoError(t, env.activity.MarkSeen(ctx, alice, activityID))
	require.NoError(t, env.activity.MarkSeen(ctx, alice, activityID))

	feed, err = env.activity.Feed(ctx, alice, 10)
	require.NoError(t, err)
	assert.True(t, feed[0].Seen)

	// Receipts are per user.
	feed, err = env.activity.Feed(ctx, admin, 10)
	require.NoError(t, err)
	assert.False(t, feed[0].Seen)

	err = env.activity.MarkSeen(ctx, alice, "a_missing0000000")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestActivityService_FeedLimit(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)

	for range 5 {
		env.activity.Record(ctx, admin.ID, domain.ActionItemAdded, "i_x", domain.EntityItem)
	}

	feed, err := env.activity.Feed(ctx, admin, 2)
	require.NoError(t, err)
	assert.Len(t, feed, 2)

	feed, err = env.activity.Feed(ctx, admin, 10_000)
	require.NoError(t, err)
	assert.Len(t, feed, 5)
}

func TestActivityService_RecordFailureIsSwallowed(t *testing.T) {
	env := setupTest(t)

	// Unknown user violates the foreign key; Record must not panic or fail the caller.
	env.activity.Record(context.Background(), "u_nobody00000000", domain.ActionItemAdded, "i_x", domain.EntityItem)

	var nilService *ActivityService
	nilService.Record(context.Background(), "u_x", domain.ActionItemAdded, "i_x", domain.EntityItem)
}

type recordingPublisher struct {
	published []*domain.Activity
}

func (p *recordingPublisher) PublishActivity(a *domain.Activity) {
	p.published = append(p.published, a)
}

func TestActivityService_PublishesRecordedActivity(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)

	pub := &recordingPublisher{}
	env.activity.SetPublisher(pub)

	env.activity.Record(ctx, admin.ID, domain.ActionItemAdded, "i_published00000", domain.EntityItem)

	require.Len(t, pub.published, 1)
	assert.Equal(t, domain.ActionItemAdded, pub.published[0].ActionType)
	assert.Equal(t, "i_published00000", pub.published[0].EntityID)
	assert.NotEmpty(t, pub.published[0].ID)
}
