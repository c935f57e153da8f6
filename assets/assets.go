// Package assets keeps files shipped inside the binary.
package assets

import "embed"

// MigrationDir is the directory name inside Migrations.
const MigrationDir = "migrations"

// Migrations are golang-migrate files named <version>_<title>.<up|down>.sql.
//
//go:embed migrations/*.sql
var Migrations embed.FS
