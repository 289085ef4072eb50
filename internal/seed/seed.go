package seed

import (
	"fmt"
	"log"

	"wanderlog/internal/models"

	"gorm.io/gorm"
)

// Result counts what a run created.
type Result struct {
	Users       []*models.User
	Posts       []*models.Post
	Follows     int
	Engagements int
	Comments    int
}

// Seeder populates a database according to a Profile.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f}, nil
}

// ClearAll deletes every row of the application tables, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	tables := []string{"api_key_usage_logs", "api_keys", "comments", "likes", "followers", "blog_posts", "users"}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run seeds users, their posts, the follow graph, engagements and comments.
func (s *Seeder) Run(profile Profile) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if s.factory.opts.MaxDays <= 0 {
		s.factory.opts.MaxDays = profile.MaxDays
	}
	log.Printf("🌱 Seeding %d users (up to %d posts each)...", profile.Users, profile.PostsPerUser)

	result := &Result{}
	var err error
	if result.Users, err = s.seedUsers(profile.Users); err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(result.Users))

	if result.Posts, err = s.seedPosts(result.Users, profile); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(result.Posts))

	if result.Follows, err = s.seedFollows(result.Users, profile.FollowRatio); err != nil {
		return nil, fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("✓ %d follow edges created", result.Follows)

	if result.Engagements, result.Comments, err = s.seedEngagement(result.Users, result.Posts, profile); err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Printf("✓ %d likes/dislikes and %d comments created", result.Engagements, result.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return result, nil
}

func (s *Seeder) seedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser(i + 1)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		if (i+1)%100 == 0 {
			log.Printf("Created %d users...", i+1)
		}
	}
	return users, nil
}

func (s *Seeder) seedPosts(users []*models.User, profile Profile) ([]*models.Post, error) {
	fake := s.factory.Faker()
	var posts []*models.Post
	for _, user := range users {
		for n := fake.Number(0, profile.PostsPerUser); n > 0; n-- {
			posts = append(posts, s.factory.BuildPost(user, profile.ImageProbability))
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) seedFollows(users []*models.User, ratio float64) (int, error) {
	fake := s.factory.Faker()
	created := 0
	for _, follower := range users {
		for _, following := range users {
			if follower.ID == following.ID || fake.Float64Range(0, 1) >= ratio {
				continue
			}
			if err := s.factory.CreateFollow(follower, following); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// seedEngagement gives each (user, post) pair at most one engagement record.
func (s *Seeder) seedEngagement(users []*models.User, posts []*models.Post, profile Profile) (int, int, error) {
	fake := s.factory.Faker()
	engagements, comments := 0, 0
	for _, post := range posts {
		for _, user := range users {
			if fake.Float64Range(0, 1) >= profile.EngagementRatio {
				continue
			}
			polarity := models.Polarity(fake.Float64Range(0, 1) < profile.LikeRatio)
			if err := s.factory.CreateEngagement(user, post, polarity); err != nil {
				return engagements, comments, err
			}
			engagements++
		}

		for n := fake.Number(0, profile.MaxComments); n > 0; n-- {
			author := users[fake.Number(0, len(users)-1)]
			if _, err := s.factory.CreateComment(author, post); err != nil {
				return engagements, comments, err
			}
			comments++
		}
	}
	return engagements, comments, nil
}
