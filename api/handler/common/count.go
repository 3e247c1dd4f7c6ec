package common

import (
	"gorm.io/gorm"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// GetOptimizedCount counts the rows matched by query. Unfiltered counts of
// tables that allow it use the planner estimate from pg_class and fall back
// to COUNT(*) when it is unavailable.
func GetOptimizedCount(query *gorm.DB, strategy types.FastCountStrategy, hasFilters bool) (int64, error) {
	var total int64
	if hasFilters || !strategy.SupportsFastCount() {
		return total, query.Count(&total).Error
	}

	switch strategy.GetOptimizationType() {
	case types.CountOptimizationTypePgClass:
		if err := getCountByPgClass(query, strategy.TableName(), &total); err != nil || total <= 0 {
			return total, query.Count(&total).Error
		}
		return total, nil
	default:
		return total, query.Count(&total).Error
	}
}

func getCountByPgClass(db *gorm.DB, tableName string, total *int64) error {
	return db.Session(&gorm.Session{NewDB: true}).Raw(`
		SELECT CASE
			WHEN reltuples >= 0 THEN reltuples::BIGINT
			ELSE 0
		END
		FROM pg_class
		WHERE relname = ?
	`, tableName).Scan(total).Error
}

// HasFilters reports whether any of the conditions narrows the query.
func HasFilters(conditions ...bool) bool {
	for _, condition := range conditions {
		if condition {
			return true
		}
	}
	return false
}
