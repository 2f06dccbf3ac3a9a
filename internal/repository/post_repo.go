package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/wandermatch/internal/db"
	"github.com/oggyb/wandermatch/internal/utils/pagination"
)

// PostRepository provides data access for community posts.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new repository bound to the given DB connection.
func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

// Create inserts post and fills its ID.
func (r *PostRepository) Create(ctx context.Context, post *db.CommunityPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// PostFilter narrows a post listing. Empty fields match everything.
type PostFilter struct {
	AuthorID    string
	LocationTag string
}

// List returns posts newest first (created_at DESC, id DESC).
//
// Behavior:
//   - limit <= 0 returns every matching post and no token.
//   - Otherwise at most limit posts older than the cursor are returned, with
//     a next token when more remain.
//
// Example:
//
//	repo.List(ctx, PostFilter{LocationTag: "Munnar"}, nil, 20)
func (r *PostRepository) List(
	ctx context.Context,
	filter PostFilter,
	paginationToken *string,
	limit int,
) ([]db.CommunityPost, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.LocationTag != "" {
		query = query.Where("location_tag = ?", filter.LocationTag)
	}
	if !cursor.IsZero() {
		ts := cursor.Created()
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", ts, ts, cursor.ID)
	}
	if limit > 0 {
		query = query.Limit(limit + 1)
	}

	posts := []db.CommunityPost{}
	if err := query.Find(&posts).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if limit > 0 && len(posts) > limit {
		last := posts[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		posts = posts[:limit]
	}
	return posts, nextToken, nil
}
