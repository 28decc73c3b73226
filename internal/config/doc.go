// Package config defines configuration structures for the pixget CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (PIXGET_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    Bucket     string
//	    Workers    int
//	    MaxRetries int
//	    Timeout    time.Duration
//	    PageSize   int
//	    Auth       AuthConfig
//	}
//
//	type AuthConfig struct {
//	    Username    string
//	    Password    string
//	    AccessToken string
//	}
package config
