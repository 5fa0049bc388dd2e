// Wingspan correlates heterogeneous forensic artifact records into
// coherent correlation matches.
//
// It reads a pipeline configuration that selects a correlation engine
// (time-window scanning or identity-based clustering), binds wing rules to
// feather databases, and writes matches to a results database.
//
// Usage:
//
//	# Run a pipeline once
//	wingspan run --config pipeline.yaml
//
//	# Validate a pipeline configuration without running it
//	wingspan validate --config pipeline.yaml
//
//	# List available correlation engines
//	wingspan engines
//
//	# Run a pipeline repeatedly on a cron schedule
//	wingspan schedule --config pipeline.yaml --cron "0 */6 * * *"
//
// For complete documentation, see the project README.
package main

func main() {
	Execute()
}
