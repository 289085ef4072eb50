package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/follow/:followingId
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "followingId")
	if err != nil {
		return nil
	}

	if err := s.followService.Follow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Followed successfully"})
}

// UnfollowUser handles POST /api/follow/unfollow/:followingId
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "followingId")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed successfully"})
}

// GetFollowers handles GET /api/follow/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.followService.Followers(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/follow/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.followService.Following(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetNotFollowing handles GET /api/follow/unfollowing-users
func (s *Server) GetNotFollowing(c *fiber.Ctx) error {
	users, err := s.followService.NotFollowing(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowCounts handles GET /api/follow/counts/:userId
func (s *Server) GetFollowCounts(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	counts, err := s.followService.Counts(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}
