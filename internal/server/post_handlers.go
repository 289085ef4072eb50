package server

import (
	"wanderlog/internal/models"
	"wanderlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm is the multipart (or JSON) body of create and update.
type postForm struct {
	Title       string `json:"title" form:"title"`
	Content     string `json:"content" form:"content"`
	CountryName string `json:"countryName" form:"countryName"`
	DateOfVisit string `json:"dateOfVisit" form:"dateOfVisit"`
}

func parsePostForm(c *fiber.Ctx) (postForm, *service.Upload, error) {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return form, nil, models.NewValidationError("Invalid request body")
	}
	image, err := formUpload(c, "image")
	return form, image, err
}

// GetAllPosts handles GET /api/blogposts
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.All(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetRecentPosts handles GET /api/blogposts/recent
func (s *Server) GetRecentPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.Recent(c.UserContext(), c.QueryInt("limit", service.DefaultListingLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPopularPosts handles GET /api/blogposts/popular
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.Popular(c.UserContext(), c.QueryInt("limit", service.DefaultListingLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetMostCommentedPosts handles GET /api/blogposts/mostCommented
func (s *Server) GetMostCommentedPosts(c *fiber.Ctx) error {
	posts, err := s.feedService.MostCommented(c.UserContext(), c.QueryInt("limit", service.DefaultListingLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/blogposts/search?query=&page=&pageSize=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultSearchSize)
	posts, err := s.feedService.Search(c.UserContext(), c.Query("query"), p.Page, p.PageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingFeed handles GET /api/blogposts/following/blogposts
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultFeedSize)
	posts, err := s.feedService.Following(c.UserContext(), currentUserID(c), p.Page, p.PageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/blogposts/user/:userId
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	posts, err := s.feedService.ByUser(c.UserContext(), currentUserID(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/blogposts/:postId
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.feedService.Detail(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/blogposts/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, image, err := parsePostForm(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      currentUserID(c),
		Title:       form.Title,
		Content:     form.Content,
		CountryName: form.CountryName,
		DateOfVisit: form.DateOfVisit,
		Image:       image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/blogposts/update/:postId
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	form, image, err := parsePostForm(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:      currentUserID(c),
		PostID:      postID,
		Title:       form.Title,
		Content:     form.Content,
		CountryName: form.CountryName,
		DateOfVisit: form.DateOfVisit,
		Image:       image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/blogposts/delete/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: postID,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
