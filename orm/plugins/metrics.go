package plugins

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/JWebSmart/Nft-marketplace/metrics"
)

const startKey = "metrics:start_time"

// DELETE FROM must be tried before the bare FROM pattern.
var tablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)INSERT\s+INTO\s+["\x60]?(\w+)["\x60]?`),
	regexp.MustCompile(`(?i)UPDATE\s+["\x60]?(\w+)["\x60]?`),
	regexp.MustCompile(`(?i)DELETE\s+FROM\s+["\x60]?(\w+)["\x60]?`),
	regexp.MustCompile(`(?i)FROM\s+["\x60]?(\w+)["\x60]?`),
}

var knownOperations = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"CREATE": true, "ALTER": true, "DROP": true,
}

// MetricsPlugin records query counts, latency and affected rows for every
// gorm statement, labelled by operation and table.
type MetricsPlugin struct{}

func NewMetricsPlugin() *MetricsPlugin {
	return &MetricsPlugin{}
}

func (p *MetricsPlugin) Name() string {
	return "MetricsPlugin"
}

type registerFunc func(name string, fn func(*gorm.DB)) error

func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		kind          string
		before, after registerFunc
	}{
		{"query", cb.Query().Before("*").Register, cb.Query().After("*").Register},
		{"create", cb.Create().Before("*").Register, cb.Create().After("*").Register},
		{"update", cb.Update().Before("*").Register, cb.Update().After("*").Register},
		{"delete", cb.Delete().Before("*").Register, cb.Delete().After("*").Register},
		{"row", cb.Row().Before("*").Register, cb.Row().After("*").Register},
		{"raw", cb.Raw().Before("*").Register, cb.Raw().After("*").Register},
	}
	for _, h := range hooks {
		if err := h.before("metrics:before_"+h.kind, start); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+h.kind, observe); err != nil {
			return err
		}
	}
	return nil
}

func start(db *gorm.DB) {
	db.Set(startKey, time.Now())
}

func observe(db *gorm.DB) {
	v, ok := db.Get(startKey)
	if !ok {
		return
	}
	began, ok := v.(time.Time)
	if !ok {
		return
	}

	operation := operationOf(db)
	status := "success"
	if db.Error != nil {
		status = "error"
	}
	metrics.DBQueriesTotal().WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration().WithLabelValues(operation, tableOf(db)).Observe(time.Since(began).Seconds())
	if operation != "SELECT" && db.RowsAffected >= 0 {
		metrics.DBRowsAffected().WithLabelValues(operation).Observe(float64(db.RowsAffected))
	}
}

func operationOf(db *gorm.DB) string {
	if db.Statement == nil {
		return "UNKNOWN"
	}
	return operationFromSQL(db.Statement.SQL.String())
}

func operationFromSQL(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	op := strings.ToUpper(fields[0])
	if knownOperations[op] {
		return op
	}
	return "OTHER"
}

func tableOf(db *gorm.DB) string {
	if db.Statement == nil {
		return "unknown"
	}
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	if table := extractTableFromSQL(db.Statement.SQL.String()); table != "" {
		return table
	}
	return "unknown"
}

func extractTableFromSQL(sql string) string {
	for _, re := range tablePatterns {
		if m := re.FindStringSubmatch(sql); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
