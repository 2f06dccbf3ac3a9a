package social_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/social"
)

func TestCreatePostValidates(t *testing.T) {
	ctx := context.Background()
	env := setup(t, func(_ *social.Deps, o *social.Options) { o.MaxPostLen = 40 })

	post, err := env.engine.CreatePost(ctx, "biju", "Jeep safari to Kolukkumalai, 2 seats", "  Munnar ", "")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Munnar", post.LocationTag)
	assert.Equal(t, env.clock.Now(), post.CreatedAt)

	_, err = env.engine.CreatePost(ctx, "biju", "   ", "Munnar", "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = env.engine.CreatePost(ctx, "biju", strings.Repeat("ക", 41), "Munnar", "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = env.engine.CreatePost(ctx, "biju", "hello", strings.Repeat("x", 129), "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = env.engine.CreatePost(ctx, "ghost", "hello", "Munnar", "")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestPostFeedByLocationAndAuthor(t *testing.T) {
	ctx := context.Background()
	env := setup(t, nil)

	create := func(author, content, tag string) {
		t.Helper()
		_, err := env.engine.CreatePost(ctx, author, content, tag, "")
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
	}
	create("biju", "Mist over the tea estates", "Munnar")
	create("anu", "Fort Kochi art walk", "Kochi")
	create("dev", "Anyone for Attukad falls?", "Munnar")
	create("anu", "Back home, missing the hills", "")

	feed, next, err := env.engine.ListPosts(ctx, "", nil, 0)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, feed, 4)
	assert.Equal(t, "Back home, missing the hills", feed[0].Post.Content)
	assert.Equal(t, "Anu", feed[0].Author.DisplayName)

	munnar, next, err := env.engine.ListPosts(ctx, "Munnar", nil, 1)
	require.NoError(t, err)
	require.Len(t, munnar, 1)
	assert.Equal(t, "dev", munnar[0].Post.AuthorID)
	require.NotNil(t, next)

	munnar, next, err = env.engine.ListPosts(ctx, "Munnar", next, 1)
	require.NoError(t, err)
	require.Len(t, munnar, 1)
	assert.Equal(t, "biju", munnar[0].Post.AuthorID)
	assert.Equal(t, "Munnar", munnar[0].Author.District)
	assert.Nil(t, next)

	mine, _, err := env.engine.ListUserPosts(ctx, "anu", nil, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Back home, missing the hills", mine[0].Post.Content)
	assert.Equal(t, "Fort Kochi art walk", mine[1].Post.Content)

	_, _, err = env.engine.ListUserPosts(ctx, "ghost", nil, 0)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	bad := "%%%"
	_, _, err = env.engine.ListPosts(ctx, "", &bad, 10)
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}
