package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "/api/admin/users/42", expected: "users"},
		{path: "/api/admin/groups/7/students", expected: "groups"},
		{path: "/api/hr/excuses", expected: "hr.excuses"},
		{path: "/api/hr/worklogs/3", expected: "hr.worklogs"},
		{path: "/api/student/excuses", expected: "excuses"},
		{path: "/api/calendar/notes", expected: "calendar"},
		{path: "/api/settings/profile", expected: "settings"},
		{path: "/api/admin", expected: "admin"},
		{path: "/", expected: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResourceFromPath(tc.path))
		})
	}
}
