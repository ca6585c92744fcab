package protocol

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Inbound messages are schema-checked before any field access; a client can
// never reach a handler with a payload the catalog does not describe.
var inboundSchemas map[string]*jsonschema.Schema

func init() {
	files := map[string]string{
		TypeJoin:    "join.schema.json",
		TypeMove:    "move.schema.json",
		TypeCollect: "collect.schema.json",
	}
	inboundSchemas = make(map[string]*jsonschema.Schema, len(files))
	for typ, name := range files {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			panic(fmt.Sprintf("protocol: read schema %s: %v", name, err))
		}
		s, err := jsonschema.CompileString(name, string(raw))
		if err != nil {
			panic(fmt.Sprintf("protocol: compile schema %s: %v", name, err))
		}
		inboundSchemas[typ] = s
	}
}

// ValidateInbound checks a raw client message against the schema for its
// declared type. Unknown types are rejected.
func ValidateInbound(typ string, raw []byte) error {
	s, ok := inboundSchemas[typ]
	if !ok {
		return fmt.Errorf("unknown message type %q", typ)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
