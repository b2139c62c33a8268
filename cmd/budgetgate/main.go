// Budgetgate is a per-project resource budgeting service.
//
// Clients report spend per (config, project) pair and ask whether a
// project currently exceeds its budget. Spend is summed over a sliding
// window; state flips are debounced by a backoff so answers do not
// flap at the threshold.
//
// Usage:
//
//	# Start the service with the default configuration file
//	budgetgate run
//
//	# Start with a custom configuration file
//	budgetgate run --config /etc/budgetgate/config.yaml
//
//	# Validate a configuration file
//	budgetgate validate --config config.yaml
//
//	# Show version information
//	budgetgate version
package main

func main() {
	Execute()
}
