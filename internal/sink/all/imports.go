// Package all wires all built-in sink backends into the sink factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories with the sink package. It makes the following sink kinds
// available at runtime:
//
//   - "text"     (recpipe/internal/sink/text)
//   - "sqlite"   (recpipe/internal/sink/sqlite)
//   - "postgres" (recpipe/internal/sink/postgres)
//   - "mysql"    (recpipe/internal/sink/mysql)
//   - "mssql"    (recpipe/internal/sink/mssql)
//
// Binaries that only need a subset can blank-import the individual backend
// packages instead.
package all

import (
	_ "recpipe/internal/sink/mssql"
	_ "recpipe/internal/sink/mysql"
	_ "recpipe/internal/sink/postgres"
	_ "recpipe/internal/sink/sqlite"
	_ "recpipe/internal/sink/text"
)
