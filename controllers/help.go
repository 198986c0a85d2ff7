package controllers

import (
	"routeerp_go/middleware"
	"routeerp_go/models"

	"github.com/gofiber/fiber/v2"
)

type HelpTopic struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var commonTopics = []HelpTopic{
	{Title: "Signing in", Body: "Sign in with your email and password. Sessions end when you log out or when an admin removes your account."},
	{Title: "Calendar", Body: "The calendar shows the coming weeks of sessions for the groups you take part in. Notes you add are kept until the server restarts."},
	{Title: "Profile", Body: "Change your name, email, department and password from Settings."},
}

var roleTopics = map[string][]HelpTopic{
	models.RoleAdmin: {
		{Title: "Reviewing excuses", Body: "Pending excuses can be approved or rejected once. A reviewed excuse keeps its first decision."},
		{Title: "HR", Body: "Employees, work logs and salary reports live under HR. Salary is logged hours times the hourly rate."},
	},
	models.RoleInstructor: {
		{Title: "Your groups", Body: "Groups you teach appear on your dashboard together with the sessions of the next seven days."},
	},
	models.RoleMentor: {
		{Title: "Your groups", Body: "Groups you mentor appear on your dashboard together with the sessions of the next seven days."},
	},
	models.RoleStudent: {
		{Title: "Submitting an excuse", Body: "Submit an excuse with a reason and the date you missed. You are notified when an admin reviews it."},
	},
}

// GetHelp returns the help topics relevant to the caller's role.
func GetHelp(c *fiber.Ctx) error {
	topics := append([]HelpTopic{}, commonTopics...)
	if user, err := middleware.GetCurrentUser(c); err == nil {
		topics = append(topics, roleTopics[user.Role]...)
	}
	return c.JSON(fiber.Map{"topics": topics})
}
