package server

import (
	"wanderlog/internal/models"
	"wanderlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type editProfileForm struct {
	Username    string `json:"username" form:"username"`
	Address     string `json:"address" form:"address"`
	Description string `json:"description" form:"description"`
}

// GetProfile handles GET /api/user/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// EditProfile handles PUT /api/user/profile/edit
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var form editProfileForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	picture, err := formUpload(c, "profile_picture")
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.EditProfile(c.UserContext(), service.EditProfileInput{
		UserID:      currentUserID(c),
		Username:    form.Username,
		Address:     form.Address,
		Description: form.Description,
		Picture:     picture,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/user/all
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
