package res

import (
	_ "embed"
)

// Stations is the built-in station catalog, used unless a catalog file is configured.
//
//go:embed stations.json
var Stations []byte
