package service

import (
	"context"
	"errors"
	"testing"

	"wanderlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Function-field repository stubs. A nil field returns zero values.

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
	listAllFn       func(context.Context) ([]models.Post, error)
	listByUserFn    func(context.Context, uint) ([]models.Post, error)
	listByAuthorsFn func(context.Context, []uint, int, int) ([]models.Post, error)
	recentFn        func(context.Context, int) ([]models.Post, error)
	popularFn       func(context.Context, int) ([]models.Post, error)
	mostCommentedFn func(context.Context, int) ([]models.Post, error)
	searchFn        func(context.Context, string, int, int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn == nil {
		post.ID = 1
		return nil
	}
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ListAll(ctx context.Context) ([]models.Post, error) {
	if s.listAllFn == nil {
		return []models.Post{}, nil
	}
	return s.listAllFn(ctx)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	if s.listByUserFn == nil {
		return []models.Post{}, nil
	}
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, ids []uint, page, pageSize int) ([]models.Post, error) {
	if s.listByAuthorsFn == nil {
		return []models.Post{}, nil
	}
	return s.listByAuthorsFn(ctx, ids, page, pageSize)
}
func (s *postRepoStub) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	if s.recentFn == nil {
		return []models.Post{}, nil
	}
	return s.recentFn(ctx, limit)
}
func (s *postRepoStub) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	if s.popularFn == nil {
		return []models.Post{}, nil
	}
	return s.popularFn(ctx, limit)
}
func (s *postRepoStub) MostCommented(ctx context.Context, limit int) ([]models.Post, error) {
	if s.mostCommentedFn == nil {
		return []models.Post{}, nil
	}
	return s.mostCommentedFn(ctx, limit)
}
func (s *postRepoStub) Search(ctx context.Context, q string, page, pageSize int) ([]models.Post, error) {
	if s.searchFn == nil {
		return []models.Post{}, nil
	}
	return s.searchFn(ctx, q, page, pageSize)
}

type userRepoStub struct {
	createFn         func(context.Context, *models.User) error
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByIDsFn       func(context.Context, []uint) (map[uint]*models.User, error)
	updatePasswordFn func(context.Context, uint, string) error
	updateProfileFn  func(context.Context, *models.User) error
	listSummariesFn  func(context.Context) ([]models.UserSummary, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return &models.User{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	if s.getByIDsFn == nil {
		return map[uint]*models.User{}, nil
	}
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	if s.updatePasswordFn == nil {
		return nil
	}
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, user *models.User) error {
	if s.updateProfileFn == nil {
		return nil
	}
	return s.updateProfileFn(ctx, user)
}
func (s *userRepoStub) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	if s.listSummariesFn == nil {
		return []models.UserSummary{}, nil
	}
	return s.listSummariesFn(ctx)
}

type followRepoStub struct {
	createFn        func(context.Context, uint, uint) error
	deleteFn        func(context.Context, uint, uint) (int64, error)
	listFollowersFn func(context.Context, uint) ([]models.UserSummary, error)
	listFollowingFn func(context.Context, uint) ([]models.UserSummary, error)
	followingIDsFn  func(context.Context, uint) ([]uint, error)
	countsFn        func(context.Context, uint) (models.FollowCounts, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followingID uint) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) (int64, error) {
	if s.deleteFn == nil {
		return 0, nil
	}
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	if s.listFollowersFn == nil {
		return []models.UserSummary{}, nil
	}
	return s.listFollowersFn(ctx, userID)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	if s.listFollowingFn == nil {
		return []models.UserSummary{}, nil
	}
	return s.listFollowingFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	if s.followingIDsFn == nil {
		return nil, nil
	}
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) Counts(ctx context.Context, userID uint) (models.FollowCounts, error) {
	if s.countsFn == nil {
		return models.FollowCounts{}, nil
	}
	return s.countsFn(ctx, userID)
}

type engagementRepoStub struct {
	setFn    func(context.Context, uint, uint, models.Polarity) (bool, error)
	getFn    func(context.Context, uint, uint) (*models.Like, error)
	countsFn func(context.Context, uint) (int64, int64, error)
}

func (s *engagementRepoStub) Set(ctx context.Context, userID, postID uint, p models.Polarity) (bool, error) {
	if s.setFn == nil {
		return true, nil
	}
	return s.setFn(ctx, userID, postID, p)
}
func (s *engagementRepoStub) Get(ctx context.Context, userID, postID uint) (*models.Like, error) {
	if s.getFn == nil {
		return nil, nil
	}
	return s.getFn(ctx, userID, postID)
}
func (s *engagementRepoStub) CountsForPost(ctx context.Context, postID uint) (int64, int64, error) {
	if s.countsFn == nil {
		return 0, 0, nil
	}
	return s.countsFn(ctx, postID)
}

type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	listByPostFn  func(context.Context, uint) ([]models.CommentView, error)
	countByPostFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	if s.listByPostFn == nil {
		return []models.CommentView{}, nil
	}
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	if s.countByPostFn == nil {
		return 0, nil
	}
	return s.countByPostFn(ctx, postID)
}

type apiKeyRepoStub struct {
	createFn        func(context.Context, *models.APIKey) error
	getByKeyFn      func(context.Context, string) (*models.APIKey, error)
	listByUserFn    func(context.Context, uint) ([]models.APIKey, error)
	latestActiveFn  func(context.Context, uint) (*models.APIKey, error)
	deleteForUserFn func(context.Context, string, uint) (bool, error)
	logUsageFn      func(context.Context, uint, string, bool) error
}

func (s *apiKeyRepoStub) Create(ctx context.Context, key *models.APIKey) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, key)
}
func (s *apiKeyRepoStub) GetByKey(ctx context.Context, key string) (*models.APIKey, error) {
	if s.getByKeyFn == nil {
		return nil, nil
	}
	return s.getByKeyFn(ctx, key)
}
func (s *apiKeyRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.APIKey, error) {
	if s.listByUserFn == nil {
		return []models.APIKey{}, nil
	}
	return s.listByUserFn(ctx, userID)
}
func (s *apiKeyRepoStub) LatestActive(ctx context.Context, userID uint) (*models.APIKey, error) {
	if s.latestActiveFn == nil {
		return nil, nil
	}
	return s.latestActiveFn(ctx, userID)
}
func (s *apiKeyRepoStub) DeleteForUser(ctx context.Context, key string, userID uint) (bool, error) {
	if s.deleteForUserFn == nil {
		return false, nil
	}
	return s.deleteForUserFn(ctx, key, userID)
}
func (s *apiKeyRepoStub) LogUsage(ctx context.Context, keyID uint, endpoint string, success bool) error {
	if s.logUsageFn == nil {
		return nil
	}
	return s.logUsageFn(ctx, keyID, endpoint, success)
}
func (s *apiKeyRepoStub) UsageLogs(_ context.Context, _ uint) ([]models.APIKeyUsageLog, error) {
	return []models.APIKeyUsageLog{}, nil
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
