package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/domain/analytics"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// AppliedParam is set by the filter form. Without it, a dimension that has no
// query values defaults to every option.
const AppliedParam = "applied"

// ParseCriteria builds fresh criteria from the request query. The result is validated.
func ParseCriteria(c *gin.Context, options models.FilterOptions) (models.FilterCriteria, error) {
	applied := c.Query(AppliedParam) == "1"
	defaults := analytics.AllSelected(options)

	criteria := models.FilterCriteria{
		Cities:     c.QueryArray("city"),
		Categories: c.QueryArray("category"),
	}
	if !applied {
		if len(criteria.Cities) == 0 {
			criteria.Cities = defaults.Cities
		}
		if len(criteria.Categories) == 0 {
			criteria.Categories = defaults.Categories
		}
	}
	if criteria.Cities == nil {
		criteria.Cities = []string{}
	}
	if criteria.Categories == nil {
		criteria.Categories = []string{}
	}

	if raw := strings.TrimSpace(c.Query("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.FilterCriteria{}, fmt.Errorf("%w: min_rating %q is not a number", models.ErrInvalidCriteria, raw)
		}
		criteria.MinRating = v
	}

	if err := criteria.Validate(); err != nil {
		return models.FilterCriteria{}, err
	}
	return criteria, nil
}
