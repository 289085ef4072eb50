package service

import (
	"context"
	"strings"

	"wanderlog/internal/models"
	"wanderlog/internal/observability"
	"wanderlog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListingLimit = 5
	MaxListingLimit     = 100
	DefaultSearchSize   = 10
	DefaultFeedSize     = 5
)

// FeedService assembles enriched post listings: posts joined with author
// identity and engagement counts.
type FeedService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	engage   repository.EngagementRepository
	comments repository.CommentRepository
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	engage repository.EngagementRepository,
	comments repository.CommentRepository,
) *FeedService {
	return &FeedService{posts: posts, users: users, follows: follows, engage: engage, comments: comments}
}

// ClampLimit applies the listing default and ceiling.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxListingLimit)
}

func (s *FeedService) Recent(ctx context.Context, limit int) ([]models.EnrichedPost, error) {
	defer observability.TrackFeed("recent")()
	posts, err := s.posts.Recent(ctx, ClampLimit(limit, DefaultListingLimit))
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, posts)
}

func (s *FeedService) Popular(ctx context.Context, limit int) ([]models.EnrichedPost, error) {
	defer observability.TrackFeed("popular")()
	posts, err := s.posts.Popular(ctx, ClampLimit(limit, DefaultListingLimit))
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, posts)
}

func (s *FeedService) MostCommented(ctx context.Context, limit int) ([]models.EnrichedPost, error) {
	defer observability.TrackFeed("most_commented")()
	posts, err := s.posts.MostCommented(ctx, ClampLimit(limit, DefaultListingLimit))
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, posts)
}

func (s *FeedService) Search(ctx context.Context, query string, page, pageSize int) ([]models.EnrichedPost, error) {
	defer observability.TrackFeed("search")()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	posts, err := s.posts.Search(ctx, query, max(page, 1), ClampLimit(pageSize, DefaultSearchSize))
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, posts)
}

func (s *FeedService) All(ctx context.Context) ([]models.EnrichedPost, error) {
	defer observability.TrackFeed("all")()
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, posts)
}

// ByUser lists userID's posts. Only the author may list them.
func (s *FeedService) ByUser(ctx context.Context, viewerID, userID uint) ([]models.EnrichedPost, error) {
	if viewerID != userID {
		return nil, models.NewForbiddenError("You can only list your own posts")
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, posts)
}

// Following returns posts by the users viewerID follows, newest first. An
// empty following set yields an empty feed.
func (s *FeedService) Following(ctx context.Context, viewerID uint, page, pageSize int) ([]models.EnrichedPost, error) {
	defer observability.TrackFeed("following")()
	ctx, span := observability.StartSpan(ctx, "feed", "following", attribute.Int64("viewer_id", int64(viewerID)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	ids, err := s.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.EnrichedPost{}, nil
	}

	posts, err := s.posts.ListByAuthors(ctx, ids, max(page, 1), ClampLimit(pageSize, DefaultFeedSize))
	if err != nil {
		return nil, err
	}
	enriched, err := s.Enrich(ctx, posts)
	return enriched, err
}

// Detail returns one enriched post with its comments.
func (s *FeedService) Detail(ctx context.Context, postID uint) (*models.PostWithComments, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	enriched, err := s.Enrich(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &models.PostWithComments{EnrichedPost: enriched[0], Comments: comments}, nil
}

// Enrich attaches author identity and counts to posts, keeping their order.
// Authors are loaded in one batch; counts are fetched concurrently per post
// and the first failure fails the whole call.
func (s *FeedService) Enrich(ctx context.Context, posts []models.Post) ([]models.EnrichedPost, error) {
	out := make([]models.EnrichedPost, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	authorIDs := make([]uint, 0, len(posts))
	seen := make(map[uint]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			authorIDs = append(authorIDs, p.UserID)
		}
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range posts {
		out[i].Post = posts[i]
		if author, ok := authors[posts[i].UserID]; ok {
			out[i].Author = author.Username
			out[i].ProfilePicture = author.ProfilePicture
		}

		g.Go(func() error {
			counts, err := s.countsFor(gctx, posts[i].ID)
			if err != nil {
				return err
			}
			out[i].EngagementCounts = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FeedService) countsFor(ctx context.Context, postID uint) (models.EngagementCounts, error) {
	var counts models.EngagementCounts
	var err error
	counts.LikeCount, counts.DislikeCount, err = s.engage.CountsForPost(ctx, postID)
	if err != nil {
		return counts, err
	}
	counts.CommentCount, err = s.comments.CountByPost(ctx, postID)
	return counts, err
}
