// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"wanderlog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plaintext shared by every seeded user.
const Password = "Password1!"

// Options control how entities are built and written.
type Options struct {
	// FastHash hashes the seed password at bcrypt.MinCost.
	FastHash bool
	// DryRun builds entities with synthetic IDs without touching the database.
	DryRun    bool
	BatchSize int
	MaxDays   int
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. The seed password is hashed once.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cost := bcrypt.DefaultCost
	if opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), hash: string(hash), nextID: 1000}, nil
}

// Faker exposes the factory's random source so callers share one stream.
func (f *Factory) Faker() *gofakeit.Faker {
	return f.faker
}

// BuildUser constructs a user whose username satisfies the signup policy.
func (f *Factory) BuildUser(n int) *models.User {
	username := fmt.Sprintf("%s_%d", usernameStem(f.faker.Username()), n)
	return &models.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       f.hash,
		Address:        f.faker.City() + ", " + f.faker.Country(),
		Description:    f.faker.Sentence(12),
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
}

// usernameStem keeps lowercase letters and digits and bounds the length.
func usernameStem(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(unicode.ToLower(r))
		}
		if sb.Len() == 20 {
			break
		}
	}
	if sb.Len() < 3 {
		return "traveler"
	}
	return sb.String()
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(n)
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a travel post for user without persisting it.
// CreatedAt is spread over the last MaxDays days.
func (f *Factory) BuildPost(user *models.User, imageProbability float64) *models.Post {
	country := f.faker.Country()
	city := f.faker.City()

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	createdAt := time.Now().Add(-time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute)
	visited := createdAt.AddDate(0, 0, -f.faker.Number(1, 120))

	post := &models.Post{
		UserID:      user.ID,
		Title:       fmt.Sprintf("%s %s in %s", capitalize(f.faker.Adjective()), f.faker.Noun(), city),
		Content:     f.faker.Paragraph(2, 4, 12, "\n\n"),
		CountryName: country,
		DateOfVisit: visited.Format("2006-01-02"),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if f.faker.Float64Range(0, 1) < imageProbability {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	return post
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// CreatePostsBatch persists posts in chunks of BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.CreateInBatches(posts, batch).Error
}

// CreateComment persists a short comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:      post.ID,
		UserID:      user.ID,
		CommentText: f.faker.Sentence(f.faker.Number(4, 14)),
	}
	if f.opts.DryRun {
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateEngagement persists a like or dislike from user on post.
func (f *Factory) CreateEngagement(user *models.User, post *models.Post, polarity models.Polarity) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.Like{UserID: user.ID, PostID: post.ID, IsLike: bool(polarity)}).Error
}

// CreateFollow persists the edge follower -> following.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
}
