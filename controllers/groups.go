package controllers

import (
	"routeerp_go/middleware"
	"routeerp_go/models"
	"routeerp_go/services"
	"routeerp_go/utils"

	"github.com/gofiber/fiber/v2"
)

type GroupController struct {
	groups *services.GroupService
	auth   *services.AuthService
}

func NewGroupController(groups *services.GroupService, auth *services.AuthService) *GroupController {
	return &GroupController{groups: groups, auth: auth}
}

type StudentsRequest struct {
	StudentIDs []string `json:"student_ids"`
}

// GetGroups lists every group (admin area).
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	groups, err := gc.groups.List(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch groups")
	}
	return gc.respondGroups(c, groups)
}

// GetMyGroups lists the caller's active groups.
func (gc *GroupController) GetMyGroups(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to fetch groups")
	}
	groups, err := gc.groups.VisibleTo(c.UserContext(), user)
	if err != nil {
		return respondError(c, err, "Failed to fetch groups")
	}
	return gc.respondGroups(c, groups)
}

func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	group, err := gc.groups.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch group")
	}
	staff, err := gc.staff(c)
	if err != nil {
		return respondError(c, err, "Failed to fetch group")
	}
	return c.JSON(fiber.Map{"group": utils.ToGroupDTO(*group, staff)})
}

func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var req services.GroupInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	group, err := gc.groups.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to create group")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Group created successfully",
		"group":   group,
	})
}

func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	var req services.GroupInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	group, err := gc.groups.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update group")
	}
	return c.JSON(fiber.Map{
		"message": "Group updated successfully",
		"group":   group,
	})
}

func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	if err := gc.groups.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete group")
	}
	return c.JSON(fiber.Map{"message": "Group deleted successfully"})
}

// SetStudents replaces the group's student list.
func (gc *GroupController) SetStudents(c *fiber.Ctx) error {
	var req StudentsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	group, err := gc.groups.SetStudents(c.UserContext(), c.Params("id"), req.StudentIDs)
	if err != nil {
		return respondError(c, err, "Failed to update group students")
	}
	return c.JSON(fiber.Map{
		"message": "Group students updated successfully",
		"group":   group,
	})
}

func (gc *GroupController) respondGroups(c *fiber.Ctx, groups []models.Group) error {
	staff, err := gc.staff(c)
	if err != nil {
		return respondError(c, err, "Failed to fetch groups")
	}
	return c.JSON(fiber.Map{
		"groups": utils.ToGroupDTOs(groups, staff),
		"total":  len(groups),
	})
}

// staff indexes instructors and mentors by id.
func (gc *GroupController) staff(c *fiber.Ctx) (map[string]models.User, error) {
	staff := make(map[string]models.User)
	for _, role := range []string{models.RoleInstructor, models.RoleMentor} {
		users, err := gc.auth.ListUsers(c.UserContext(), services.UserFilter{Role: role})
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			staff[u.ID] = u
		}
	}
	return staff, nil
}
