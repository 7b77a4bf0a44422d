package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cboard-backend/internal/model"
)

func TestOrganizationsFromRows(t *testing.T) {
	rows := [][]string{
		{"1", "Cornell Dance", "cornell-dance", "Performing Arts"},
		{"2", " Chess Club ", "chess"},
		{"", "No ID", "no-id", "Other"},
	}

	orgs := organizationsFromRows(rows)
	require.Len(t, orgs, 2)

	assert.Equal(t, model.Organization{ID: "1", Name: "Cornell Dance", Slug: "cornell-dance", Type: "Performing Arts"}, orgs[0])
	assert.Equal(t, model.Organization{ID: "2", Name: "Chess Club", Slug: "chess"}, orgs[1])
}

func TestOrganizationsFromRowsEmpty(t *testing.T) {
	orgs := organizationsFromRows(nil)
	assert.NotNil(t, orgs)
	assert.Empty(t, orgs)
}

func TestFlyersFromRows(t *testing.T) {
	orgs := organizationsBySlug([]model.Organization{
		{ID: "1", Name: "Dance", Slug: "dance", Type: "Arts"},
		{ID: "2", Name: "Chess", Slug: "chess", Type: "Games"},
	}, zap.NewNop())

	rows := [][]string{
		{"10", "Spring Show", "dance, chess", "Apr 1 24 6:00 PM", "Apr 1 24 9:00 PM", "https://img/1.png", "https://post/1", "Bailey Hall"},
		{"11", "Blitz Night", "chess,ghost", "Apr 2 24 6:00 PM", "Apr 2 24 8:00 PM"},
		{"12", "Untagged"},
	}

	flyers := flyersFromRows(rows, orgs, zap.NewNop())
	require.Len(t, flyers, 3)

	assert.Equal(t, "Spring Show", flyers[0].Title)
	assert.Equal(t, []model.Organization{orgs["dance"], orgs["chess"]}, flyers[0].Organizations)
	assert.Equal(t, "Apr 1 24 9:00 PM", flyers[0].EndDate)
	assert.Equal(t, "https://img/1.png", flyers[0].ImageURL)
	assert.Equal(t, "https://post/1", flyers[0].PostURL)
	assert.Equal(t, "Bailey Hall", flyers[0].Location)

	// unknown slugs are dropped, trailing cells default to empty
	assert.Equal(t, []model.Organization{orgs["chess"]}, flyers[1].Organizations)
	assert.Empty(t, flyers[1].Location)

	assert.NotNil(t, flyers[2].Organizations)
	assert.Empty(t, flyers[2].Organizations)
}

func TestOrganizationsBySlugFirstRowWins(t *testing.T) {
	orgs := organizationsBySlug([]model.Organization{
		{ID: "1", Name: "Dance A", Slug: "dance"},
		{ID: "2", Name: "Dance B", Slug: "dance"},
	}, zap.NewNop())

	require.Len(t, orgs, 1)
	assert.Equal(t, "Dance A", orgs["dance"].Name)

	flyers := flyersFromRows([][]string{{"10", "Recital", "dance"}}, orgs, zap.NewNop())
	require.Len(t, flyers, 1)
	assert.Equal(t, "1", flyers[0].Organizations[0].ID)
}

func TestSplitSlugs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitSlugs("a, b,c"))
	assert.Equal(t, []string{"a"}, splitSlugs(" a , ,"))
	assert.Nil(t, splitSlugs(""))
}

func TestCell(t *testing.T) {
	row := []string{" x ", "y"}
	assert.Equal(t, "x", cell(row, 0))
	assert.Equal(t, "y", cell(row, 1))
	assert.Equal(t, "", cell(row, 2))
	assert.Equal(t, "", cell(row, -1))
}
