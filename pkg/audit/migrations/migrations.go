// Package migrations embeds the SQL schema for the audit ledger,
// grounded on the teacher's pkg/store/metadata/postgres/migrations
// embedded-filesystem pattern consumed by golang-migrate's iofs
// source driver.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
