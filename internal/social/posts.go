package social

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/oggyb/wandermatch/internal/db"
	svcErr "github.com/oggyb/wandermatch/internal/errors"
	"github.com/oggyb/wandermatch/internal/repository"
	"github.com/oggyb/wandermatch/internal/utils/pagination"
)

const maxLocationTagLen = 128

// PostView is a community post with its author's profile.
type PostView struct {
	Post db.CommunityPost
	// Author is zero-valued (except ID) when the identity store no longer
	// knows them.
	Author db.User
}

// CreatePost publishes a community post by authorID.
//
// Behavior:
//   - Content must be non-blank and within MaxPostLen runes.
//   - locationTag is trimmed; empty means the post is not about a place.
//   - Unknown authors fail with ErrNotFound.
func (e *Engine) CreatePost(ctx context.Context, authorID, content, locationTag, imageURL string) (post *db.CommunityPost, err error) {
	defer func() { e.observe("create_post", err) }()

	if strings.TrimSpace(content) == "" {
		return nil, svcErr.Invalid("post content must not be empty")
	}
	if e.opts.MaxPostLen > 0 && utf8.RuneCountInString(content) > e.opts.MaxPostLen {
		return nil, svcErr.Invalid("post longer than %d characters", e.opts.MaxPostLen)
	}
	locationTag = strings.TrimSpace(locationTag)
	if utf8.RuneCountInString(locationTag) > maxLocationTagLen {
		return nil, svcErr.Invalid("location tag longer than %d characters", maxLocationTagLen)
	}
	if err := e.identity.Require(ctx, authorID); err != nil {
		return nil, err
	}

	post = &db.CommunityPost{
		AuthorID:    authorID,
		Content:     content,
		LocationTag: locationTag,
		ImageURL:    strings.TrimSpace(imageURL),
		CreatedAt:   e.now(),
	}
	if err := e.posts.Create(ctx, post); err != nil {
		return nil, svcErr.Storage(err)
	}
	e.log.Debug("post created", "post", post.ID, "author", authorID, "location", locationTag)
	return post, nil
}

// ListPosts returns the community feed newest first, only posts tagged
// with locationTag when it is set. limit <= 0 returns everything.
func (e *Engine) ListPosts(ctx context.Context, locationTag string, pageToken *string, limit int) ([]PostView, *string, error) {
	filter := repository.PostFilter{LocationTag: strings.TrimSpace(locationTag)}
	return e.listPosts(ctx, filter, pageToken, limit)
}

// ListUserPosts returns userID's posts newest first.
func (e *Engine) ListUserPosts(ctx context.Context, userID string, pageToken *string, limit int) ([]PostView, *string, error) {
	if err := e.identity.Require(ctx, userID); err != nil {
		return nil, nil, err
	}
	return e.listPosts(ctx, repository.PostFilter{AuthorID: userID}, pageToken, limit)
}

func (e *Engine) listPosts(ctx context.Context, filter repository.PostFilter, pageToken *string, limit int) (views []PostView, next *string, err error) {
	defer func() { e.observe("list_posts", err) }()

	posts, next, err := e.posts.List(ctx, filter, pageToken, limit)
	if err != nil {
		if svcErr.Is(err, pagination.ErrInvalidToken) {
			return nil, nil, svcErr.Invalid("invalid page token")
		}
		return nil, nil, svcErr.Storage(err)
	}

	authors := make([]string, 0, len(posts))
	for i := range posts {
		authors = append(authors, posts[i].AuthorID)
	}
	profiles, err := e.identity.Lookup(ctx, authors)
	if err != nil {
		return nil, nil, err
	}

	views = make([]PostView, 0, len(posts))
	for _, p := range posts {
		author, ok := profiles[p.AuthorID]
		if !ok {
			author = db.User{ID: p.AuthorID}
		}
		views = append(views, PostView{Post: p, Author: author})
	}
	return views, next, nil
}
