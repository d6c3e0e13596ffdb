// Package config loads and merges commitgenie configuration from multiple
// sources with viper.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (COMMITGENIE_SERVICE_APIKEY,
//     COMMITGENIE_SERVICE_MODEL, COMMITGENIE_REVIEW_MODE, ...), including
//     those loaded from a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/commitgenie/config.json)
//  4. Built-in defaults
//
// OPENAI_API_KEY is used when no API key is configured anywhere else.
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key. [NewLogger] builds the zap logger from
// the logging section.
package config
