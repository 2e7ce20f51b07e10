package registry

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// factoryManifest is the HCL shape of a `factory` block.
type factoryManifest struct {
	Name             string    `hcl:"name,label"`
	Module           string    `hcl:"module"`
	DefaultClassName string    `hcl:"default_class_name"`
	Variant          string    `hcl:"variant"`
	InputTypes       cty.Value `hcl:"input_types,optional"`
	OutputTypes      cty.Value `hcl:"output_types,optional"`
}

// allowManifest is the HCL shape of an `allow` block.
type allowManifest struct {
	Module  string    `hcl:"module,label"`
	Classes cty.Value `hcl:"classes"`
}

// manifestFile is the top-level structure of one manifest file.
type manifestFile struct {
	Factories []*factoryManifest `hcl:"factory,block"`
	Allows    []*allowManifest   `hcl:"allow,block"`
	Body      hcl.Body           `hcl:",remain"`
}

// decodeManifest parses and decodes one manifest source.
func decodeManifest(src []byte, filename string) (*manifestFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %s", filename, diags.Error())
	}

	var manifest manifestFile
	diags = gohcl.DecodeBody(file.Body, nil, &manifest)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %s", filename, diags.Error())
	}
	return &manifest, nil
}

// stringList normalizes a manifest attribute that may be written as one
// string or as a list of strings.
func stringList(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return []string{v.AsString()}, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []string
		for it := v.ElementIterator(); it.Next(); {
			_, element := it.Element()
			if element.IsNull() || element.Type() != cty.String {
				return nil, fmt.Errorf("expected string elements, got %s", element.Type().FriendlyName())
			}
			out = append(out, element.AsString())
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected string or list of strings, got %s", ty.FriendlyName())
}
