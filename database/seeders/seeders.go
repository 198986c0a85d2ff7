package seeders

import (
	"fmt"
	"time"

	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

// SeedAll runs all seeders
func SeedAll(db *gorm.DB) error {
	logrus.Info("Starting database seeding...")

	steps := []struct {
		name string
		fn   func(*gorm.DB) error
	}{
		{"users", SeedUsers},
		{"groups", SeedGroups},
		{"excuses", SeedExcuses},
		{"hr", SeedHR},
	}
	for _, step := range steps {
		if err := step.fn(db); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	logrus.Info("Database seeding completed successfully!")
	return nil
}

// SeedUsers inserts the four demo accounts into an empty directory.
func SeedUsers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Debug("Users already seeded, skipping...")
		return nil
	}

	hashedPassword, err := utils.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	joined := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	users := []models.User{
		{Email: "admin@route.com", Name: "Admin User", Role: models.RoleAdmin, Department: "Administration", JoinDate: joined},
		{Email: "instructor@route.com", Name: "Sarah Instructor", Role: models.RoleInstructor, Department: "Engineering", JoinDate: joined.AddDate(0, 1, 0)},
		{Email: "mentor@route.com", Name: "Mike Mentor", Role: models.RoleMentor, Department: "Engineering", JoinDate: joined.AddDate(0, 2, 0)},
		{Email: "student@route.com", Name: "John Student", Role: models.RoleStudent, Department: "Full Stack", JoinDate: joined.AddDate(0, 3, 0)},
	}

	for i := range users {
		users[i].ID = models.NewID()
		users[i].Password = hashedPassword
		users[i].IsActive = true
		if err := db.Create(&users[i]).Error; err != nil {
			return fmt.Errorf("user %s: %w", users[i].Email, err)
		}
	}

	logrus.WithField("count", len(users)).Info("Users seeded successfully")
	return nil
}

// SeedGroups creates two groups taught by the demo staff with the demo student enrolled.
func SeedGroups(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Group{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Debug("Groups already seeded, skipping...")
		return nil
	}

	instructor, err := userByEmail(db, "instructor@route.com")
	if err != nil {
		return err
	}
	mentor, err := userByEmail(db, "mentor@route.com")
	if err != nil {
		return err
	}
	student, err := userByEmail(db, "student@route.com")
	if err != nil {
		return err
	}

	groups := []models.Group{
		{
			Name:         "Full Stack A",
			Subject:      "React",
			InstructorID: instructor.ID,
			MentorID:     mentor.ID,
			Color:        "#3b82f6",
			Schedules: []models.GroupSchedule{
				{Day: "monday", Time: "09:00-10:30", Room: "Lab 1"},
				{Day: "wednesday", Time: "09:00-10:30", Room: "Lab 1"},
			},
			Students: []models.User{*student},
		},
		{
			Name:         "Backend B",
			Subject:      "Go",
			InstructorID: instructor.ID,
			MentorID:     mentor.ID,
			Color:        "#10b981",
			Schedules: []models.GroupSchedule{
				{Day: "tuesday", Time: "14:00-16:00", Room: "Room 204"},
				{Day: "thursday", Time: "14:00-16:00", Room: "Room 204"},
			},
			Students: []models.User{*student},
		},
	}

	for i := range groups {
		groups[i].ID = models.NewID()
		groups[i].IsActive = true
		if err := db.Omit("Students.*").Create(&groups[i]).Error; err != nil {
			return fmt.Errorf("group %s: %w", groups[i].Name, err)
		}
	}

	logrus.WithField("count", len(groups)).Info("Groups seeded successfully")
	return nil
}

// SeedExcuses gives the demo student one reviewed and one pending excuse.
func SeedExcuses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Excuse{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Debug("Excuses already seeded, skipping...")
		return nil
	}

	student, err := userByEmail(db, "student@route.com")
	if err != nil {
		return err
	}
	admin, err := userByEmail(db, "admin@route.com")
	if err != nil {
		return err
	}

	reviewedAt := time.Date(2024, 5, 11, 10, 0, 0, 0, time.Local)
	excuses := []models.Excuse{
		{
			StudentID:   student.ID,
			StudentName: student.Name,
			Reason:      "Medical appointment",
			Date:        time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local),
			Description: "Dentist appointment in the morning.",
			Status:      models.StatusApproved,
			SubmittedAt: time.Date(2024, 5, 9, 18, 0, 0, 0, time.Local),
			ReviewerID:  admin.ID,
			ReviewedBy:  admin.Name,
			ReviewedAt:  &reviewedAt,
			ReviewNotes: "Get well soon.",
		},
		{
			StudentID:   student.ID,
			StudentName: student.Name,
			Reason:      "Family emergency",
			Date:        time.Date(2024, 6, 3, 0, 0, 0, 0, time.Local),
			Status:      models.StatusPending,
			SubmittedAt: time.Date(2024, 6, 2, 20, 30, 0, 0, time.Local),
		},
	}
	for i := range excuses {
		excuses[i].ID = models.NewID()
		if err := db.Create(&excuses[i]).Error; err != nil {
			return fmt.Errorf("excuse %q: %w", excuses[i].Reason, err)
		}
	}

	logrus.WithField("count", len(excuses)).Info("Excuses seeded successfully")
	return nil
}

// SeedHR loads the fixed employee roster with its work logs and HR excuses.
func SeedHR(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Employee{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Debug("HR data already seeded, skipping...")
		return nil
	}

	employees := []models.Employee{
		{Name: "Sarah Instructor", Email: "instructor@route.com", Role: models.RoleInstructor, Department: "Engineering", HourlyRate: 45, JoinDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.Local)},
		{Name: "Mike Mentor", Email: "mentor@route.com", Role: models.RoleMentor, Department: "Engineering", HourlyRate: 30, JoinDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{Name: "Emma Davis", Email: "emma@route.com", Role: models.RoleInstructor, Department: "Data Science", HourlyRate: 50, JoinDate: time.Date(2023, 9, 1, 0, 0, 0, 0, time.Local)},
	}
	hours := [][]float64{{3, 4.5, 2}, {2, 2.5}, {6, 4}}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := range employees {
			employees[i].ID = models.NewID()
			employees[i].IsActive = true
			for _, h := range hours[i] {
				employees[i].TotalHours += h
			}
			if err := tx.Create(&employees[i]).Error; err != nil {
				return fmt.Errorf("employee %s: %w", employees[i].Name, err)
			}

			for d, h := range hours[i] {
				entry := models.WorkLog{
					BaseModel:   models.BaseModel{ID: models.NewID()},
					EmployeeID:  employees[i].ID,
					Date:        time.Date(2024, 6, 3+d, 0, 0, 0, 0, time.Local),
					HoursWorked: h,
					Description: "Teaching session",
					SessionType: "lecture",
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
		}

		excuses := []models.HRExcuse{
			{EmployeeID: employees[1].ID, EmployeeName: employees[1].Name, Type: models.HRExcuseSick, Reason: "Flu", Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local), Status: models.StatusPending, SubmittedAt: time.Date(2024, 6, 9, 8, 0, 0, 0, time.Local)},
			{EmployeeID: employees[2].ID, EmployeeName: employees[2].Name, Type: models.HRExcuseVacation, Reason: "Annual leave", Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local), Status: models.StatusPending, SubmittedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)},
		}
		for i := range excuses {
			excuses[i].ID = models.NewID()
			if err := tx.Create(&excuses[i]).Error; err != nil {
				return err
			}
		}

		logrus.WithField("employees", len(employees)).Info("HR data seeded successfully")
		return nil
	})
}

func userByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("demo user %s: %w", email, err)
	}
	return &user, nil
}
