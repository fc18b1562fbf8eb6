// Package config loads typed configuration from the environment.
//
// Structs are annotated with caarlos0/env tags and parsed once per type;
// a .env file in the working directory is honoured when present. LoadYAML
// reads a file first and lets the environment override it.
package config
