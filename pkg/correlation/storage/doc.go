// Package storage implements the result model's persistent writer: a
// relational schema for executions/results/matches/feather_metadata plus a
// batch-flushing SQLite writer used in streaming mode. There is no in-memory
// Writer; without a Writer the engines keep results in memory themselves.
package storage
