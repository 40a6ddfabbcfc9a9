// Package tokenstore keeps the CLI's token pair on disk between runs.
//
// The pair lives in a single JSON file, by default
// ~/.config/withings/tokens.json. The file is written with 0600 permissions
// inside a 0700 directory, and is replaced atomically so a crash mid-write
// never leaves a truncated file behind. Token values are never logged.
package tokenstore
