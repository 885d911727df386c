package query

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var accounts = Listing{
	Filters:      map[string]Filter{"is_staff": Bool("is_staff"), "is_active": Bool("is_active")},
	Ordering:     map[string]string{"username": "username", "joined": "date_joined"},
	Search:       []string{"username", "email"},
	DefaultOrder: "id ASC",
}

type account struct {
	ID       int64
	Username string
}

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DryRun: true,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestParse_Defaults(t *testing.T) {
	p := accounts.Parse(contextFor("/api/user"))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Empty(t, p.Search)
	assert.Empty(t, p.Filters)
	assert.Empty(t, p.Order)
}

func TestParse_ClampsAndReadsListingKeys(t *testing.T) {
	p := accounts.Parse(contextFor(
		"/api/user?page=-3&limit=500&search=+ann+&is_staff=true&is_active=maybe&password=x&ordering=-joined"))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, "ann", p.Search)
	assert.Equal(t, map[string]any{"is_staff": true}, p.Filters)
	assert.Equal(t, "date_joined DESC", p.Order)
}

func TestParse_UnknownOrderingIsIgnored(t *testing.T) {
	p := accounts.Parse(contextFor("/api/user?ordering=password"))
	assert.Empty(t, p.Order)

	p = accounts.Parse(contextFor("/api/user?ordering=username&page=2&limit=abc"))
	assert.Equal(t, "username ASC", p.Order)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestScopes_BuildQuotedWhereAndPage(t *testing.T) {
	db := dryRunDB(t)
	p := Params{
		Page:    3,
		Limit:   5,
		Search:  "a_b",
		Filters: map[string]any{"is_staff": true, "is_active": false, "unknown": 1},
	}

	var rows []account
	stmt := db.Table("users").Scopes(accounts.Where(p), accounts.Page(p)).Find(&rows).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `"is_active" = $1 AND "is_staff" = $2`)
	assert.Contains(t, sql, `("username" ILIKE $3 OR "email" ILIKE $4)`)
	assert.Contains(t, sql, "ORDER BY id ASC")
	assert.NotContains(t, sql, "unknown")
	assert.Equal(t, []any{false, true, `%a\_b%`, `%a\_b%`}, stmt.Vars[:4])
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(Params{Page: 2, Limit: 10}, 25)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(Params{Page: 1, Limit: 10}, 0)
	assert.Equal(t, int64(0), p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
