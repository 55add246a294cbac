package participant

import (
	"embed"
	"io/fs"
)

//go:embed migrations
var migrationFS embed.FS

// Migrations returns the embedded schema, one directory per database driver.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
