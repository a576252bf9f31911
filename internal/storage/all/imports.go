// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories with the storage package. It makes the following storage
// kinds available at runtime:
//
//   - "sqlite"   (mediaetl/internal/storage/sqlite)
//   - "postgres" (mediaetl/internal/storage/postgres)
//   - "mysql"    (mediaetl/internal/storage/mysql)
package all

import (
	_ "mediaetl/internal/storage/mysql"
	_ "mediaetl/internal/storage/postgres"
	_ "mediaetl/internal/storage/sqlite"
)
