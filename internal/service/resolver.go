package service

import (
	"context"

	"moodle/analyzer/internal/domain"
)

// BuildLookup maps every category to its name and top-level ancestor.
// Top-level categories map to themselves, all others are resolved from their path.
func (a *Analyzer) BuildLookup(ctx context.Context) (domain.CategoryLookup, error) {
	categories, err := a.client.Categories(ctx)
	if err != nil {
		return nil, err
	}

	lookup := make(domain.CategoryLookup, len(categories))
	for _, category := range categories {
		topLevelID := category.ID
		if !category.IsTopLevel() {
			topLevelID, err = domain.ParseTopLevelID(category.ID, category.Path)
			if err != nil {
				return nil, err
			}
		}

		lookup[category.ID] = domain.CategoryInfo{
			Name:       category.Name,
			TopLevelID: topLevelID,
		}
	}

	return lookup, nil
}
