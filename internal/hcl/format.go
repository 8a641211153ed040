package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Format returns the canonically formatted form of an HCL document. Documents
// with syntax errors are rejected rather than partially formatted.
func Format(src []byte, filename string) ([]byte, error) {
	if _, diags := hclwrite.ParseConfig(src, filename, hcl.InitialPos); diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return hclwrite.Format(src), nil
}
