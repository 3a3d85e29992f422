package cli

import "flag"

// RunFlags are common flags for the reconcile and accrue commands.
type RunFlags struct {
	ConfigPath string
	Tenant     string
	DryRun     bool
	Verbose    bool
}

// ParseRunFlags parses common run flags from the command line.
func ParseRunFlags() *RunFlags {
	flags := &RunFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "", "Configuration file path")
	flag.StringVar(&flags.Tenant, "tenant", "", "Run for a single tenant only (empty = all)")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Run without making changes")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ServeFlags holds the CLI flags for the API server command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "", "Configuration file path")
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = from config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
