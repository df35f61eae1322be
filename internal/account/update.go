package account

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UpdateRequest enumerates the editable fields; only keys present in the
// body are copied. Roles are not editable here. School replaces all seven
// school fields when an object is supplied, and clears them on an explicit
// null.
type UpdateRequest struct {
	Username   *string         `json:"username"`
	Affiliated *string         `json:"affiliated"`
	Email      *string         `json:"email"`
	FirstName  *string         `json:"firstName"`
	LastName   *string         `json:"lastName"`
	Title      *string         `json:"title"`
	School     json.RawMessage `json:"school"`
}

// ===== Update =====
// PUT /users?email=...|username=...
//
// The target is resolved by email first; on a miss, or a lookup error, the
// username is tried before giving up.
func (h *Handler) Update(c echo.Context) error {
	email := c.QueryParam("email")
	username := c.QueryParam("username")

	ctx := c.Request().Context()

	var user *User
	if email != "" {
		if u, err := h.store.ByEmail(ctx, email); err == nil {
			user = u
		}
	}
	if user == nil {
		if username == "" {
			if email == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "empty query"})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to find user"})
		}
		u, err := h.store.ByUsername(ctx, username)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Failed to find user"})
		}
		user = u
	}

	req := new(UpdateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	h.applyUpdate(req, user)

	user.Updated = time.Now()
	user.RefreshDisplayName()

	if err := h.store.Save(ctx, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": ErrorMessage(err)})
	}

	user.Sanitize()

	if err := h.sessions.Login(c, user); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "failed to establish session"})
	}
	return c.JSON(http.StatusOK, user)
}

// applyUpdate copies the allow-listed fields that are present onto the user.
// An unparseable school payload is logged and skipped, never fatal.
func (h *Handler) applyUpdate(req *UpdateRequest, user *User) {
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Affiliated != nil {
		user.Affiliated = *req.Affiliated
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Title != nil {
		user.Title = *req.Title
	}

	if len(req.School) > 0 {
		var school *School
		if err := json.Unmarshal(req.School, &school); err != nil {
			h.log.Debug("invalid school data", zap.ByteString("school", req.School))
		} else {
			user.ApplySchool(school)
		}
	}
}
