package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemas = mustCompileSchemas(map[string]string{
	TypeHello: "schemas/hello.schema.json",
	TypeInput: "schemas/input.schema.json",
	TypeFrame: "schemas/frame.schema.json",
})

func mustCompileSchemas(files map[string]string) map[string]*jsonschema.Schema {
	c := jsonschema.NewCompiler()
	out := make(map[string]*jsonschema.Schema, len(files))
	for typ, name := range files {
		raw, err := schemaFS.ReadFile(name)
		if err != nil {
			panic(err)
		}
		if err := c.AddResource(name, bytes.NewReader(raw)); err != nil {
			panic(fmt.Errorf("schema %s: %w", name, err))
		}
		out[typ] = c.MustCompile(name)
	}
	return out
}

// Validate checks raw against the schema of msgType.
func Validate(msgType string, raw []byte) error {
	s, ok := schemas[msgType]
	if !ok {
		return fmt.Errorf("no schema for message type %q", msgType)
	}
	var v any
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return fmt.Errorf("decode %s: %w", msgType, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("validate %s: %w", msgType, err)
	}
	return nil
}

func DecodeHello(raw []byte) (HelloMsg, error) {
	var m HelloMsg
	if err := Validate(TypeHello, raw); err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("decode HELLO: %w", err)
	}
	return m, nil
}

func DecodeInput(raw []byte) (InputMsg, error) {
	var m InputMsg
	if err := Validate(TypeInput, raw); err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("decode INPUT: %w", err)
	}
	return m, nil
}
