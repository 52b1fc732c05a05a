// Package config handles YAML configuration loading with environment
// variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. A .env file in the working directory is loaded first,
// so GEMINI_API_KEY and friends can live there during development.
package config
