// Package changelog records commits in the update.md changelog table.
//
// This package implements:
//   - Entry construction and row serialization
//   - Locating the table header marker and splicing a row after it
//   - Lock-guarded, atomic rewrite of the changelog file
//
// The table is kept newest-first: every new row goes directly under the
// header line, ahead of the separator row and all older rows. Nothing else
// in the file is touched.
package changelog
