// Package schema checks credential save bodies against the registry's
// published constraints before they leave the process.
package schema

import (
	"embed"
	"encoding/json"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"

	"github.com/credentialengine/obpublisher/pkg/ctdl"
	"github.com/credentialengine/obpublisher/pkg/errors"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// SaveCredential names the schema for credential save requests.
const SaveCredential = "save-credential"

// Violation is one failed constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator validates documents against one compiled schema.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*Validator{}
)

// Load returns the validator for an embedded schema, compiling it on first
// use.
func Load(name string) (*Validator, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if v, ok := compiled[name]; ok {
		return v, nil
	}

	path := "schemas/" + name + ".yaml"
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, errors.NewNotFoundError("schema", name)
	}
	v, err := Compile(name, raw)
	if err != nil {
		return nil, err
	}
	compiled[name] = v
	return v, nil
}

// Compile builds a validator from a YAML or JSON schema document.
func Compile(name string, doc []byte) (*Validator, error) {
	var tree any
	if err := yaml.Unmarshal(doc, &tree); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	jsonDoc, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.WrapParse("json", name, err)
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonDoc))
	if err != nil {
		return nil, errors.NewConfigError("schema", "cannot compile "+name, err)
	}
	return &Validator{name: name, schema: s}, nil
}

// Check validates a JSON document and returns its violations ordered by
// field.
func (v *Validator) Check(doc []byte) ([]Violation, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, errors.WrapParse("json", v.name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	out := make([]Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		out = append(out, Violation{Field: field, Message: re.Description()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}

// Validate checks a save body as it will be sent. Each violation becomes
// one validation error in the returned join.
func (v *Validator) Validate(body ctdl.APICredential) error {
	doc, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", v.name, err)
	}

	violations, err := v.Check(doc)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}

	errs := make([]error, len(violations))
	for i, vl := range violations {
		errs[i] = errors.NewValidationError(vl.Field, nil, vl.Message)
	}
	return errors.Join(errs...)
}
