// Package schemas хранит JSON-схемы ответов бэкенда, встроенные в бинарник.
package schemas

import "embed"

//go:embed responses/*.json
var SchemasFS embed.FS
