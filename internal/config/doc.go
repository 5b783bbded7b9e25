// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The server section decides how the signaling endpoint is resolved:
//
//	hosted: <scheme>://<host><path>          (same origin as the web app)
//	local:  ws://<local_host>:<local_port><path>
package config
