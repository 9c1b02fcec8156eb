package specsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"gopkg.in/yaml.v3"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
)

const maxSpecSize = 10 << 20 // 10 MB

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

var _ Source = (*HTTPSource)(nil)

// HTTPSource fetches an OpenAPI document from a running service and reduces
// it to the declared path/method/status mapping. Path declaration order is
// taken from the document text, not from decoded maps, because the matcher
// tie-breaks on it.
type HTTPSource struct {
	url    string
	client *http.Client
	logger ports.Logger
}

// NewHTTPSource creates a source fetching from url. A nil client falls back
// to http.DefaultClient.
func NewHTTPSource(url string, client *http.Client, logger ports.Logger) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client, logger: logger}
}

func (s *HTTPSource) Fetch(ctx context.Context) (*apispec.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build specification request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch specification from %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("specification endpoint %s returned status %d", s.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSpecSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read specification body: %w", err)
	}

	doc, err := ReduceOpenAPI(data)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched specification", "url", s.url, "title", documentTitle(data), "paths", doc.Len())
	return doc, nil
}

// ReduceOpenAPI extracts the path/method/status mapping from an OpenAPI
// document (JSON or YAML). Response keys that are not plain integer status
// codes ("default", "2XX") carry no auditable status and are skipped.
func ReduceOpenAPI(data []byte) (*apispec.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("OpenAPI document is not a mapping")
	}

	paths := mappingValue(root.Content[0], "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("OpenAPI document has no paths object")
	}

	doc := apispec.NewDocument()
	for i := 0; i+1 < len(paths.Content); i += 2 {
		template := paths.Content[i].Value
		item := paths.Content[i+1]
		if item.Kind != yaml.MappingNode {
			continue
		}

		for j := 0; j+1 < len(item.Content); j += 2 {
			method := strings.ToLower(item.Content[j].Value)
			if !httpMethods[method] {
				continue
			}
			responses := mappingValue(item.Content[j+1], "responses")
			if responses == nil || responses.Kind != yaml.MappingNode {
				continue
			}
			for k := 0; k+1 < len(responses.Content); k += 2 {
				status, err := strconv.Atoi(responses.Content[k].Value)
				if err != nil {
					continue
				}
				doc.Add(template, method, status)
			}
		}
	}
	return doc, nil
}

// documentTitle pulls $.info.title for log context; best effort.
func documentTitle(data []byte) string {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return ""
	}
	title, err := jsonpath.Get("$.info.title", generic)
	if err != nil {
		return ""
	}
	s, _ := title.(string)
	return s
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
