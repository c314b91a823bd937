// Package query is a small filter language over the game log, compiled to
// parameterized SQLite.
//
// A Select names a table, the columns to return and an optional Predicate
// tree. Compile turns it into SQL plus positional parameters:
//
//	query.Select{
//	  From:    "events",
//	  Columns: []string{"id", "seq", "type"},
//	  Filter: query.And{Predicates: []query.Predicate{
//	    query.Equals{Field: "game_id", Value: ir.String("g1")},
//	    query.In{Field: "type", Values: []ir.Value{ir.String("promoted"), ir.String("large_match")}},
//	  }},
//	}
//
// compiles to
//
//	SELECT id, seq, type FROM events
//	WHERE game_id = ? AND type IN (?, ?)
//	ORDER BY seq ASC
//
// # Rules
//
//   - Tables and columns are checked against the log schema before any SQL
//     is built; values are never interpolated
//   - Every query has an ORDER BY on the table's logical clock (seq for
//     events, number for moves, id for games)
//   - Values are ir.Value scalars (String, Int, Bool); floats and nulls do
//     not exist in the log
package query
