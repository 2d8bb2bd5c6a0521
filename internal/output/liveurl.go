package output

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// DefaultEndpoint is the hosted Mermaid Live Editor.
const DefaultEndpoint = "https://mermaid.live/"

// liveState is the document the live editor keeps in its URL fragment.
type liveState struct {
	Code          string `json:"code"`
	Mermaid       string `json:"mermaid"`
	AutoSync      bool   `json:"autoSync"`
	UpdateDiagram bool   `json:"updateDiagram"`
}

// LiveEditorURL returns a link that opens diagram in the live editor at
// endpoint. The state is JSON, zlib-compressed and base64url-encoded
// behind a "#pako:" fragment.
func LiveEditorURL(endpoint, diagram string) (string, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	state, err := json.Marshal(liveState{
		Code:          diagram,
		Mermaid:       `{"theme":"default"}`,
		AutoSync:      true,
		UpdateDiagram: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode editor state: %w", err)
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(state); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}

	return strings.TrimSuffix(endpoint, "/") + "/edit#pako:" + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}
