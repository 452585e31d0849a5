// Package cli parses command line arguments into a Config and runs the
// transform it describes. Usage errors carry their exit code in ExitError.
package cli
