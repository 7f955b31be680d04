package collab

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation ids the client resolves from a contract.
const (
	OperationUpload   = "uploadDocument"
	OperationExport   = "exportDocument"
	OperationDownload = "downloadFile"
)

//go:embed contract.yaml
var defaultContract []byte

// DefaultContractData returns the embedded contract describing the reference
// backend.
func DefaultContractData() []byte {
	out := make([]byte, len(defaultContract))
	copy(out, defaultContract)
	return out
}

// Contract holds the endpoint paths resolved from an OpenAPI document.
// Download is a path template containing a single `{name}` parameter.
type Contract struct {
	Server   string
	Upload   string
	Export   string
	Download string
}

// DefaultContract parses the embedded contract.
func DefaultContract(ctx context.Context) (Contract, error) {
	return LoadContract(ctx, defaultContract)
}

// LoadContract parses and validates an OpenAPI 3 document (JSON or YAML) and
// resolves the upload, export and download endpoints by operation id.
func LoadContract(ctx context.Context, data []byte) (Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return Contract{}, fmt.Errorf("collab: parse contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return Contract{}, fmt.Errorf("collab: validate contract: %w", err)
	}

	paths := make(map[string]string, 3)
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, op := range []*openapi3.Operation{item.Get, item.Post, item.Put} {
				if op == nil || op.OperationID == "" {
					continue
				}
				paths[op.OperationID] = path
			}
		}
	}

	contract := Contract{
		Upload:   paths[OperationUpload],
		Export:   paths[OperationExport],
		Download: paths[OperationDownload],
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		contract.Server = strings.TrimRight(doc.Servers[0].URL, "/")
	}

	for _, op := range []string{OperationUpload, OperationExport, OperationDownload} {
		if paths[op] == "" {
			return Contract{}, fmt.Errorf("%w: %s", ErrEndpointMissing, op)
		}
	}
	if !strings.Contains(contract.Download, "{") {
		return Contract{}, fmt.Errorf("collab: %s path %q has no name parameter", OperationDownload, contract.Download)
	}
	return contract, nil
}

// DownloadPath expands the download template for a file name.
func (c Contract) DownloadPath(name string) string {
	start := strings.Index(c.Download, "{")
	end := strings.Index(c.Download, "}")
	if start < 0 || end < start {
		return c.Download
	}
	return c.Download[:start] + name + c.Download[end+1:]
}
