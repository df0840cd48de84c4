// Package config provides configuration parsing for htmlfn projects.
//
// The configuration is stored in htmlfn.json at the project root. Every
// field can be overridden by an HTMLFN_* environment variable.
//
// # Configuration File Structure
//
//	{
//	  "templates": "templates",
//	  "context": "context.yaml",
//	  "lang": "en",
//	  "styleSheets": ["/app.css"],
//	  "server": {
//	    "addr": ":8080",
//	    "metrics": true,
//	    "preview": true,
//	    "watch": true,
//	    "allowedOrigins": ["localhost:*"],
//	    "shutdownTimeout": "10s"
//	  },
//	  "publish": {
//	    "bucket": "my-site",
//	    "prefix": "pages",
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000",
//	    "pathStyle": true
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Environment Overrides
//
//	HTMLFN_TEMPLATES, HTMLFN_CONTEXT, HTMLFN_LANG, HTMLFN_STYLESHEETS
//	HTMLFN_SERVER_ADDR, HTMLFN_SERVER_METRICS, HTMLFN_SERVER_PREVIEW,
//	HTMLFN_SERVER_WATCH, HTMLFN_SERVER_ALLOWED_ORIGINS, HTMLFN_SERVER_SHUTDOWN_TIMEOUT
//	HTMLFN_PUBLISH_BUCKET, HTMLFN_PUBLISH_PREFIX, HTMLFN_PUBLISH_REGION,
//	HTMLFN_PUBLISH_ENDPOINT, HTMLFN_PUBLISH_PATH_STYLE,
//	HTMLFN_PUBLISH_ACCESS_KEY_ID, HTMLFN_PUBLISH_SECRET_ACCESS_KEY
//	HTMLFN_LOG_LEVEL, HTMLFN_LOG_FORMAT
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    // handle error
//	}
//	if err := cfg.Validate(); err != nil {
//	    // handle error
//	}
package config
