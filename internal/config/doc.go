// Package config loads wavscribe settings from TOML.
//
// Every filesystem location the pipeline touches (fixed input audio, output,
// video and scratch directories, the extraction script) and every external
// tool is a config value, so commands can be pointed at temporary
// directories. A missing config file is not an error; defaults reproduce the
// historical layout relative to the working directory.
package config
