package services

import (
	"context"
	"strings"
	"testing"

	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addEmployee(t *testing.T, hr *HRService, name string, rate float64) *models.Employee {
	t.Helper()
	employee, err := hr.AddEmployee(context.Background(), EmployeeInput{
		Name:       name,
		Role:       models.RoleInstructor,
		HourlyRate: rate,
	})
	require.NoError(t, err)
	return employee
}

func TestCalculateSalary(t *testing.T) {
	hr := NewHRService(newTestDB(t))
	ctx := context.Background()
	employee := addEmployee(t, hr, "Sara Instructor", 45)

	for _, hours := range []float64{3, 4.5, 2} {
		_, err := hr.AddWorkLog(ctx, WorkLogInput{EmployeeID: employee.ID, Date: "2024-03-01", HoursWorked: hours})
		require.NoError(t, err)
	}

	salary, err := hr.CalculateSalary(ctx, employee.ID)
	require.NoError(t, err)
	assert.InDelta(t, 427.5, salary, 0.0001)

	unknown, err := hr.CalculateSalary(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, unknown)
}

func TestWorkLogsRefreshTotalHours(t *testing.T) {
	hr := NewHRService(newTestDB(t))
	ctx := context.Background()
	first := addEmployee(t, hr, "First Employee", 30)
	second := addEmployee(t, hr, "Second Employee", 50)

	entry, err := hr.AddWorkLog(ctx, WorkLogInput{EmployeeID: first.ID, Date: "2024-03-01", HoursWorked: 2})
	require.NoError(t, err)
	_, err = hr.AddWorkLog(ctx, WorkLogInput{EmployeeID: first.ID, Date: "2024-03-02", HoursWorked: 2.5})
	require.NoError(t, err)

	reloaded, err := hr.GetEmployee(ctx, first.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, reloaded.TotalHours, 0.0001)

	// moving a log to another employee refreshes both totals
	_, err = hr.UpdateWorkLog(ctx, entry.ID, WorkLogInput{EmployeeID: second.ID, Date: "2024-03-01", HoursWorked: 6})
	require.NoError(t, err)

	reloaded, err = hr.GetEmployee(ctx, first.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, reloaded.TotalHours, 0.0001)
	other, err := hr.GetEmployee(ctx, second.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6, other.TotalHours, 0.0001)

	require.NoError(t, hr.DeleteWorkLog(ctx, entry.ID))
	other, err = hr.GetEmployee(ctx, second.ID)
	require.NoError(t, err)
	assert.Zero(t, other.TotalHours)

	assert.ErrorIs(t, hr.DeleteWorkLog(ctx, entry.ID), ErrWorkLogNotFound)
	_, err = hr.UpdateWorkLog(ctx, entry.ID, WorkLogInput{EmployeeID: second.ID, Date: "2024-03-01", HoursWorked: 1})
	assert.ErrorIs(t, err, ErrWorkLogNotFound)
}

func TestWorkLogValidation(t *testing.T) {
	hr := NewHRService(newTestDB(t))
	ctx := context.Background()

	for _, input := range []WorkLogInput{
		{EmployeeID: "e1", Date: "2024-03-01", HoursWorked: 0},
		{EmployeeID: "e1", Date: "2024-03-01", HoursWorked: 25},
		{EmployeeID: "", Date: "2024-03-01", HoursWorked: 1},
		{EmployeeID: "e1", Date: "March 1", HoursWorked: 1},
	} {
		_, err := hr.AddWorkLog(ctx, input)
		assert.Error(t, err, "input %+v", input)
	}

	// an unknown employee id is accepted
	entry, err := hr.AddWorkLog(ctx, WorkLogInput{EmployeeID: "e1", Date: "2024-03-01", HoursWorked: 1})
	require.NoError(t, err)

	logs, err := hr.ListWorkLogs(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entry.ID, logs[0].ID)
}

func TestSalaryReport(t *testing.T) {
	hr := NewHRService(newTestDB(t))
	ctx := context.Background()
	busy := addEmployee(t, hr, "Alpha", 50)
	addEmployee(t, hr, "Beta", 30)

	for _, hours := range []float64{6, 4} {
		_, err := hr.AddWorkLog(ctx, WorkLogInput{EmployeeID: busy.ID, Date: "2024-03-01", HoursWorked: hours})
		require.NoError(t, err)
	}

	lines, err := hr.SalaryReport(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Alpha", lines[0].Name)
	assert.InDelta(t, 10, lines[0].Hours, 0.0001)
	assert.InDelta(t, 500, lines[0].Salary, 0.0001)
	assert.Equal(t, "Beta", lines[1].Name)
	assert.Zero(t, lines[1].Salary)
}

func TestHRExcuseReviewedOnce(t *testing.T) {
	db := newTestDB(t)
	hr := NewHRService(db)
	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	employee := addEmployee(t, hr, "Sara Instructor", 45)
	ctx := context.Background()

	excuse, err := hr.SubmitExcuse(ctx, HRExcuseInput{
		EmployeeID: employee.ID,
		Type:       models.HRExcuseSick,
		Reason:     "Flu",
		Date:       "2024-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, employee.Name, excuse.EmployeeName)

	pending, err := hr.PendingExcuses(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	reviewed, err := hr.UpdateExcuseStatus(ctx, admin, excuse.ID, ReviewInput{Status: models.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, reviewed.Status)

	again, err := hr.UpdateExcuseStatus(ctx, admin, excuse.ID, ReviewInput{Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrExcuseAlreadyReviewed)
	assert.Equal(t, models.StatusRejected, again.Status)

	_, err = hr.SubmitExcuse(ctx, HRExcuseInput{EmployeeID: "missing", Type: models.HRExcuseOther, Reason: "x", Date: "2024-03-04"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = hr.SubmitExcuse(ctx, HRExcuseInput{EmployeeID: employee.ID, Type: "holiday", Reason: "x", Date: "2024-03-04"})
	assert.Error(t, err)
}

func TestHRExcuseReviewRules(t *testing.T) {
	db := newTestDB(t)
	hr := NewHRService(db)
	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	mentor := createUser(t, db, "mentor@route.com", models.RoleMentor)
	employee := addEmployee(t, hr, "Sara Instructor", 45)
	ctx := context.Background()

	excuse, err := hr.SubmitExcuse(ctx, HRExcuseInput{EmployeeID: employee.ID, Type: models.HRExcuseSick, Reason: "Flu", Date: "2024-03-04"})
	require.NoError(t, err)

	_, err = hr.UpdateExcuseStatus(ctx, admin, excuse.ID, ReviewInput{Status: models.StatusApproved, Notes: strings.Repeat("a", 6000)})
	var validationErr *utils.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "notes")

	_, err = hr.UpdateExcuseStatus(ctx, mentor, excuse.ID, ReviewInput{Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrNotReviewer)

	pending, err := hr.PendingExcuses(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestEmployeeCRUD(t *testing.T) {
	hr := NewHRService(newTestDB(t))
	ctx := context.Background()
	employee := addEmployee(t, hr, "Mentor Person", 20)

	rate := 35.0
	updated, err := hr.UpdateEmployee(ctx, employee.ID, EmployeePatch{HourlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, 35.0, updated.HourlyRate)

	_, err = hr.AddEmployee(ctx, EmployeeInput{Name: "Cook", Role: models.RoleStudent})
	assert.Error(t, err)

	require.NoError(t, hr.DeleteEmployee(ctx, employee.ID))
	_, err = hr.GetEmployee(ctx, employee.ID)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.ErrorIs(t, hr.DeleteEmployee(ctx, employee.ID), ErrEmployeeNotFound)
}
