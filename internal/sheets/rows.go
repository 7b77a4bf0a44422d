package sheets

import (
	"strings"

	"go.uber.org/zap"

	"cboard-backend/internal/model"
)

// Column positions in the organization and flyer sheets.
const (
	orgColID = iota
	orgColName
	orgColSlug
	orgColType
)

const (
	flyerColID = iota
	flyerColTitle
	flyerColSlugs
	flyerColStart
	flyerColEnd
	flyerColImage
	flyerColPost
	flyerColLocation
)

// cell returns the trimmed cell at idx. The Sheets API drops trailing empty
// cells, so short rows are normal.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func organizationsFromRows(rows [][]string) []model.Organization {
	orgs := make([]model.Organization, 0, len(rows))
	for _, row := range rows {
		id := cell(row, orgColID)
		if id == "" {
			continue
		}
		orgs = append(orgs, model.Organization{
			ID:   id,
			Name: cell(row, orgColName),
			Slug: cell(row, orgColSlug),
			Type: cell(row, orgColType),
		})
	}
	return orgs
}

// organizationsBySlug indexes orgs by slug. The first row with a slug wins,
// matching the organization lookup by slug.
func organizationsBySlug(orgs []model.Organization, logger *zap.Logger) map[string]model.Organization {
	m := make(map[string]model.Organization, len(orgs))
	for _, o := range orgs {
		if first, ok := m[o.Slug]; ok {
			logger.Warn("duplicate organization slug",
				zap.String("slug", o.Slug), zap.String("kept", first.ID), zap.String("ignored", o.ID))
			continue
		}
		m[o.Slug] = o
	}
	return m
}

func flyersFromRows(rows [][]string, orgs map[string]model.Organization, logger *zap.Logger) []model.Flyer {
	flyers := make([]model.Flyer, 0, len(rows))
	for _, row := range rows {
		id := cell(row, flyerColID)
		if id == "" {
			continue
		}

		resolved := []model.Organization{}
		for _, slug := range splitSlugs(cell(row, flyerColSlugs)) {
			org, ok := orgs[slug]
			if !ok {
				logger.Warn("flyer references unknown organization",
					zap.String("flyer", id), zap.String("slug", slug))
				continue
			}
			resolved = append(resolved, org)
		}

		flyers = append(flyers, model.Flyer{
			ID:            id,
			Title:         cell(row, flyerColTitle),
			Organizations: resolved,
			StartDate:     cell(row, flyerColStart),
			EndDate:       cell(row, flyerColEnd),
			ImageURL:      cell(row, flyerColImage),
			PostURL:       cell(row, flyerColPost),
			Location:      cell(row, flyerColLocation),
		})
	}
	return flyers
}

// splitSlugs splits the comma separated slug cell of a flyer row.
func splitSlugs(s string) []string {
	var slugs []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			slugs = append(slugs, p)
		}
	}
	return slugs
}
