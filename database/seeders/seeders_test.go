package seeders

import (
	"testing"

	"routeerp_go/database"
	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAllIsIdempotent(t *testing.T) {
	db, err := database.OpenSQLiteMemory(models.NewID())
	require.NoError(t, err)

	require.NoError(t, SeedAll(db))
	require.NoError(t, SeedAll(db))

	counts := map[interface{}]int64{
		&models.User{}:     4,
		&models.Group{}:    2,
		&models.Excuse{}:   2,
		&models.Employee{}: 3,
		&models.HRExcuse{}: 2,
		&models.WorkLog{}:  7,
	}
	for model, expected := range counts {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Equal(t, expected, n, "%T", model)
	}

	admin, err := userByEmail(db, "admin@route.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, utils.CheckPassword(DemoPassword, admin.Password))

	var emma models.Employee
	require.NoError(t, db.First(&emma, "email = ?", "emma@route.com").Error)
	assert.InDelta(t, 10, emma.TotalHours, 0.0001)
}
