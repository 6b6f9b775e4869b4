package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/api/dto"
	"github.com/spec-kit/forum-service/internal/profile"
	"github.com/spec-kit/forum-service/internal/service"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

// ProfileHandler receives profile edit submissions.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: profileService}
}

// Update POST /profile. Accepts a JSON body or a form post with social_<n>
// fields.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	in, err := profileInput(c)
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	user, err := h.service.Update(c.UserContext(), viewer, token, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

func profileInput(c *fiber.Ctx) (profile.Input, error) {
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		var req dto.ProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return profile.Input{}, apperrors.NewValidationError("invalid payload", nil)
		}
		return profile.Input{
			Username: req.Username,
			Bio:      req.Bio,
			Website:  req.Website,
			Email:    req.Email,
			Phone:    req.Phone,
			Socials:  req.Socials,
		}, nil
	}

	values := formValues(c)
	return profile.Input{
		Username: values["username"],
		Bio:      values["bio"],
		Website:  values["website"],
		Email:    values["email"],
		Phone:    values["phone"],
		Socials:  profile.CollectSocials(values),
	}, nil
}

// formValues flattens urlencoded or multipart fields, first value wins.
func formValues(c *fiber.Ctx) map[string]string {
	values := map[string]string{}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for key, vs := range form.Value {
			if len(vs) > 0 {
				values[key] = vs[0]
			}
		}
		return values
	}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if _, seen := values[k]; !seen {
			values[k] = string(value)
		}
	})
	return values
}
