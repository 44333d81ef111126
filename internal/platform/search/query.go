package search

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

// ParamType defines how a search parameter maps onto a SQL clause.
type ParamType int

const (
	ParamToken  ParamType = iota // exact match on an enumerated value
	ParamDate                    // ordered date, supports gt/lt/ge/le/ne prefixes
	ParamString                  // case-insensitive substring match
	ParamNumber                  // ordered number, supports gt/lt/ge/le/ne prefixes
)

// ParamConfig maps a search parameter name to its database column.
type ParamConfig struct {
	Type   ParamType
	Column string
}

// Query builds SQL WHERE clauses from request search parameters. It
// encapsulates the common list/search pattern used across the domain
// repositories.
type Query struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewQuery creates a new Query for the given table and column list.
func NewQuery(table, cols string) *Query {
	return &Query{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Idx returns the next available positional parameter index.
func (q *Query) Idx() int { return q.idx }

// Add appends a raw WHERE clause fragment (without leading "AND").
func (q *Query) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// ApplyParam applies a single search parameter using its config.
func (q *Query) ApplyParam(config ParamConfig, value string) {
	var clause string
	var args []interface{}

	switch config.Type {
	case ParamDate:
		clause, args, q.idx = DateClause(config.Column, value, q.idx)
	case ParamString:
		clause, args, q.idx = StringClause(config.Column, value, q.idx)
	case ParamNumber:
		clause, args, q.idx = NumberClause(config.Column, value, q.idx)
	default:
		clause, args, q.idx = TokenClause(config.Column, value, q.idx)
	}

	q.where += " AND " + clause
	q.args = append(q.args, args...)
}

// ApplyParams applies all parameters from the given map that appear in configs.
func (q *Query) ApplyParams(params map[string]string, configs map[string]ParamConfig) {
	for name, value := range params {
		if config, ok := configs[name]; ok {
			q.ApplyParam(config, value)
		}
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *Query) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// ApplySort processes the sort parameter and sets ORDER BY using the config
// column mappings. The value is a comma-separated list of param names,
// optionally prefixed with - for DESC. Falls back to defaultOrder when the
// parameter is empty or names no known columns.
func (q *Query) ApplySort(sortParam, defaultOrder string, configs map[string]ParamConfig) {
	if sortParam == "" {
		q.orderBy = defaultOrder
		return
	}
	var parts []string
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		desc := false
		if strings.HasPrefix(field, "-") {
			desc = true
			field = field[1:]
		}
		if config, ok := configs[field]; ok {
			if desc {
				parts = append(parts, config.Column+" DESC")
			} else {
				parts = append(parts, config.Column+" ASC")
			}
		}
	}
	if len(parts) > 0 {
		q.orderBy = strings.Join(parts, ", ")
	} else {
		q.orderBy = defaultOrder
	}
}

// CountSQL returns the count query SQL.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.table, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *Query) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *Query) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.table, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *Query) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

// ExtractParams extracts search parameters from the query string, excluding
// control parameters (limit, offset, sort). Unknown params are included —
// ApplyParams ignores ones not in the repo's config.
func ExtractParams(c echo.Context) map[string]string {
	params := map[string]string{}
	for k, v := range c.QueryParams() {
		if len(v) == 0 {
			continue
		}
		switch k {
		case "limit", "offset", "sort":
			continue
		}
		params[k] = v[0]
	}
	return params
}
