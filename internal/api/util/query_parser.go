package util

import (
	"fmt"
	"strings"
)

// QueryOperator is a filter comparison.
type QueryOperator string

const (
	OpEq        QueryOperator = "eq"
	OpNe        QueryOperator = "ne"
	OpContains  QueryOperator = "contains"
	OpIsNull    QueryOperator = "isnull"
	OpIsNotNull QueryOperator = "isnotnull"
)

var validOperators = map[string]QueryOperator{
	"eq":        OpEq,
	"ne":        OpNe,
	"contains":  OpContains,
	"isnull":    OpIsNull,
	"isnotnull": OpIsNotNull,
}

// QueryFilter is one condition of a query parameter.
type QueryFilter struct {
	Field    string
	Operator QueryOperator
	Value    string
}

type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

type OrderClause struct {
	Field     string
	Direction OrderDirection
}

// ParseQueryString parses comma-separated conditions of the forms
// field|value, field|isnull, field|isnotnull and field|operator|value.
func ParseQueryString(queryStr string) ([]QueryFilter, error) {
	var filters []QueryFilter

	for _, pair := range strings.Split(queryStr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.Split(pair, "|")
		switch len(parts) {
		case 2:
			op := QueryOperator(strings.ToLower(parts[1]))
			if op == OpIsNull || op == OpIsNotNull {
				filters = append(filters, QueryFilter{Field: parts[0], Operator: op})
				continue
			}
			filters = append(filters, QueryFilter{Field: parts[0], Operator: OpEq, Value: parts[1]})

		case 3:
			op, ok := validOperators[strings.ToLower(parts[1])]
			if !ok {
				return nil, fmt.Errorf("invalid operator: %s", parts[1])
			}
			filters = append(filters, QueryFilter{Field: parts[0], Operator: op, Value: parts[2]})

		default:
			return nil, fmt.Errorf("invalid query format: %s (expected field|value or field|operator|value)", pair)
		}
	}

	return filters, nil
}

// ParseOrderString parses comma-separated field|direction clauses.
func ParseOrderString(orderStr string) ([]OrderClause, error) {
	var orders []OrderClause

	for _, pair := range strings.Split(orderStr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		field, dir, found := strings.Cut(pair, "|")
		if !found {
			dir = string(OrderAsc)
		}
		dir = strings.ToLower(dir)
		if dir != string(OrderAsc) && dir != string(OrderDesc) {
			return nil, fmt.Errorf("invalid order direction: %s (expected asc or desc)", dir)
		}
		orders = append(orders, OrderClause{Field: field, Direction: OrderDirection(dir)})
	}

	return orders, nil
}

// ValidateFields rejects any field not in allowed. kind names the parameter
// in the error message.
func ValidateFields(kind string, fields []string, allowed []string) error {
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}
	for _, f := range fields {
		if _, ok := set[f]; !ok {
			return fmt.Errorf("invalid %s field: %s (valid fields: %s)", kind, f, strings.Join(allowed, ", "))
		}
	}
	return nil
}
