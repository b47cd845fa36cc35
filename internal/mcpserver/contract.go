package mcpserver

import (
	"fmt"
	"strings"

	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
)

// SchemaContract renders every kind's field set as Markdown for LLM
// consumers.
func SchemaContract() string {
	var b strings.Builder
	b.WriteString("# Site Content Schema\n\n")
	b.WriteString("Collections hold many records addressed by a store-assigned id. " +
		"Singletons are one record addressed by path. Updates overwrite only the fields " +
		"they name; a null value removes a field. List fields are comma separated. " +
		"Markdown fields are rendered and sanitized on the public site.\n")
	for _, s := range contentservice.Schemas() {
		kind := "collection"
		switch {
		case s.Singleton:
			kind = "singleton"
		case s.AppendOnly:
			kind = "collection, written by the public forms; list and delete only"
		}
		fmt.Fprintf(&b, "\n## %s (`%s`, %s)\n\n", s.Label, s.Path, kind)
		for _, f := range s.Fields {
			opt := ""
			if f.Optional {
				opt = ", optional"
			}
			fmt.Fprintf(&b, "- `%s` (%s%s): %s\n", f.Name, f.Type, opt, f.Label)
		}
	}
	return b.String()
}
