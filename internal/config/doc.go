// Package config loads runtime configuration for the elements CLI.
//
// Configuration is read from elements.json in the working directory (or the
// file named by --config) and may be overridden by ELEMENTS_* environment
// variables, e.g. ELEMENTS_SERVER_PORT=8080 or ELEMENTS_LOG_LEVEL=debug.
//
// # Configuration File Structure
//
//	{
//	  "reactive": { "maxFlushRounds": 100 },
//	  "render":   { "pretty": false },
//	  "log":      { "level": "info", "format": "text" },
//	  "server":   { "host": "localhost", "port": 3000 },
//	  "live":     { "writeTimeout": "10s", "readTimeout": "60s" },
//	  "publish":  {
//	    "dir": "dist",
//	    "s3Bucket": "my-site",
//	    "s3Prefix": "elements",
//	    "s3Region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Apply()
//	logger := cfg.Log.NewLogger(os.Stderr)
package config
