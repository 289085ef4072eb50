package seed

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile sizes one seeding run.
type Profile struct {
	Users int `yaml:"users"`
	// PostsPerUser is the upper bound of posts each user writes.
	PostsPerUser int `yaml:"posts_per_user"`
	// FollowRatio is the probability of an edge between any ordered user pair.
	FollowRatio float64 `yaml:"follow_ratio"`
	// EngagementRatio is the probability that a user likes or dislikes a post.
	EngagementRatio float64 `yaml:"engagement_ratio"`
	// LikeRatio is the share of engagements that are likes.
	LikeRatio        float64 `yaml:"like_ratio"`
	MaxComments      int     `yaml:"max_comments_per_post"`
	MaxDays          int     `yaml:"max_days"`
	ImageProbability float64 `yaml:"image_probability"`
}

// Presets are the built-in profiles selectable by name.
var Presets = map[string]Profile{
	"tiny": {
		Users: 5, PostsPerUser: 2, FollowRatio: 0.4, EngagementRatio: 0.5,
		LikeRatio: 0.8, MaxComments: 2, MaxDays: 30, ImageProbability: 0.3,
	},
	"demo": {
		Users: 50, PostsPerUser: 4, FollowRatio: 0.1, EngagementRatio: 0.2,
		LikeRatio: 0.75, MaxComments: 5, MaxDays: 365, ImageProbability: 0.4,
	},
	"crowded": {
		Users: 500, PostsPerUser: 6, FollowRatio: 0.02, EngagementRatio: 0.05,
		LikeRatio: 0.7, MaxComments: 8, MaxDays: 730, ImageProbability: 0.4,
	},
}

// DefaultProfile is the "demo" preset.
func DefaultProfile() Profile {
	return Presets["demo"]
}

// PresetNames lists Presets in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadProfile reads a YAML profile from path. Keys missing from the file
// keep DefaultProfile's values.
func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read seed profile: %w", err)
	}
	profile := DefaultProfile()
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse seed profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, fmt.Errorf("seed profile %s: %w", path, err)
	}
	return profile, nil
}

// Validate rejects sizes the seeder cannot honor.
func (p Profile) Validate() error {
	if p.Users < 1 {
		return fmt.Errorf("users must be at least 1")
	}
	if p.PostsPerUser < 0 || p.MaxComments < 0 || p.MaxDays < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	for name, ratio := range map[string]float64{
		"follow_ratio":      p.FollowRatio,
		"engagement_ratio":  p.EngagementRatio,
		"like_ratio":        p.LikeRatio,
		"image_probability": p.ImageProbability,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	return nil
}
