package server

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// GetCountries handles GET /api/countries
func (s *Server) GetCountries(c *fiber.Ctx) error {
	countries, err := s.countryService.All(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(countries)
}

// GetCountry handles GET /api/countries/:name
func (s *Server) GetCountry(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		name = c.Params("name")
	}

	country, err := s.countryService.ByName(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(country)
}
