// Splitscreen - Video Search Projection and View Compaction
// Copyright 2026 Splitscreen contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jsbroks/splitscreen

package search

import (
	"strings"
)

// Op is a filter clause operator.
type Op string

const (
	// OpEquals matches a single exact value: field:=value.
	OpEquals Op = ":="
	// OpAnyOf matches any of several values (OR group): field:=[a,b].
	OpAnyOf Op = ":=[]"
	// OpGreater and friends are numeric range operators.
	OpGreater   Op = ":>"
	OpGreaterEq Op = ":>="
	OpLess      Op = ":<"
	OpLessEq    Op = ":<="
)

// Filter is a single filter clause. Clauses combine with logical AND;
// OR grouping happens inside one clause via OpAnyOf.
type Filter struct {
	Field  string
	Op     Op
	Values []string
}

// Sort is a single sort clause. The field SortFieldRelevance is the
// relevance pseudo-sort.
type Sort struct {
	Field string
	Desc  bool
}

// SortFieldRelevance orders results by the engine's text relevance score.
// It is always applied ahead of any field sorts.
const SortFieldRelevance = "_score"

// Request is the wire request executed against the search index.
type Request struct {
	// Query is the free-text query; empty means match-all.
	Query string
	// QueryBy lists the fields the free-text query searches.
	QueryBy []string

	Filters []Filter
	Sorts   []Sort

	Offset int
	Limit  int
}

// QueryByExpr returns the comma-joined query field list.
func (r *Request) QueryByExpr() string {
	return strings.Join(r.QueryBy, ",")
}

// FilterExpr serializes the filter clauses into the &&-joined wire form:
//
//	status:=published && tag_ids:=[t1,t2] && view_count:>100
func (r *Request) FilterExpr() string {
	clauses := make([]string, 0, len(r.Filters))
	for _, f := range r.Filters {
		switch f.Op {
		case OpAnyOf:
			clauses = append(clauses, f.Field+":=["+strings.Join(f.Values, ",")+"]")
		case OpEquals:
			clauses = append(clauses, f.Field+":="+f.Values[0])
		default:
			clauses = append(clauses, f.Field+string(f.Op)+f.Values[0])
		}
	}
	return strings.Join(clauses, " && ")
}

// SortExpr serializes the sort clauses into the comma-joined
// field:direction wire form:
//
//	_score:desc,trending_score:desc,created_at:asc
func (r *Request) SortExpr() string {
	clauses := make([]string, 0, len(r.Sorts))
	for _, s := range r.Sorts {
		direction := "asc"
		if s.Desc {
			direction = "desc"
		}
		clauses = append(clauses, s.Field+":"+direction)
	}
	return strings.Join(clauses, ",")
}

// Result is a ranked page of search hits. IDs preserve the engine's rank
// order; downstream consumers must not re-sort, since text relevance cannot
// be recomputed from the database.
type Result struct {
	IDs   []string
	Total uint64
}
