package server

import (
	"wanderlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/likes/like/:postId
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.engage(c, models.PolarityLike)
}

// DislikePost handles POST /api/likes/dislike/:postId
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.engage(c, models.PolarityDislike)
}

func (s *Server) engage(c *fiber.Ctx, polarity models.Polarity) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.engagementService.SetEngagement(c.UserContext(), currentUserID(c), postID, polarity); err != nil {
		return respondError(c, err)
	}

	likes, dislikes, err := s.engagementService.CountsForPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":       "Post " + polarity.String() + "d successfully",
		"like_count":    likes,
		"dislike_count": dislikes,
	})
}
