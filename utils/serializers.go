package utils

import (
	"strings"

	"routeerp_go/models"
)

// Compact representations used across APIs
type UserShort struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type GroupDTO struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Subject      string                 `json:"subject"`
	Color        string                 `json:"color"`
	IsActive     bool                   `json:"is_active"`
	Instructor   *UserShort             `json:"instructor,omitempty"`
	Mentor       *UserShort             `json:"mentor,omitempty"`
	Schedules    []models.GroupSchedule `json:"schedules"`
	Students     []UserShort            `json:"students,omitempty"`
	StudentCount int                    `json:"student_count"`
}

// ToUserShort maps a user to its compact form. With no name it falls back to
// the local part of the email.
func ToUserShort(u models.User) UserShort {
	name := u.Name
	if name == "" && u.Email != "" {
		name = strings.Split(u.Email, "@")[0]
	}
	return UserShort{ID: u.ID, Name: name, Email: u.Email, Role: u.Role}
}

// ToGroupDTO maps a group, resolving its instructor and mentor from staff.
// Caller preloads Schedules and, when wanted, Students.
func ToGroupDTO(g models.Group, staff map[string]models.User) GroupDTO {
	dto := GroupDTO{
		ID:           g.ID,
		Name:         g.Name,
		Subject:      g.Subject,
		Color:        g.Color,
		IsActive:     g.IsActive,
		Schedules:    g.Schedules,
		StudentCount: len(g.Students),
	}
	if dto.Schedules == nil {
		dto.Schedules = []models.GroupSchedule{}
	}
	if u, ok := staff[g.InstructorID]; ok {
		short := ToUserShort(u)
		dto.Instructor = &short
	}
	if u, ok := staff[g.MentorID]; ok {
		short := ToUserShort(u)
		dto.Mentor = &short
	}
	for _, s := range g.Students {
		dto.Students = append(dto.Students, ToUserShort(s))
	}
	return dto
}

// ToGroupDTOs maps groups with ToGroupDTO.
func ToGroupDTOs(groups []models.Group, staff map[string]models.User) []GroupDTO {
	out := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, ToGroupDTO(g, staff))
	}
	return out
}
