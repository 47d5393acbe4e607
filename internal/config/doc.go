// Package config loads the runtime settings of the adsconfig service from
// multiple sources (YAML file, environment variables, CLI flags) with
// precedence: CLI flags > YAML config > Environment variables > Defaults.
// Advertising API credentials themselves are resolved by package adsconfig;
// this package only decides where they are read from.
package config
