package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// requestFile is the wrapped form of a request file.
type requestFile struct {
	Modifications []core.Request `json:"modifications" yaml:"modifications"`
}

func newMapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "map FILE",
		Short: "Map modification requests to unimod records",
		Long: `Resolve a list of modification requests and print the fixed and
variable modifications as JSON. FILE is JSON or YAML ("-" reads JSON from
stdin) and holds either a list of requests or an object with a
"modifications" list.

Example request:
  [{"aa": "M", "type": "variable", "position": "any", "name": "Oxidation",
    "neutral_loss": "unimod"}]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := loadRequests(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			mods, err := a.mapper.MapMods(reqs)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(mods)
		},
	}
}

func loadRequests(path string, stdin io.Reader) ([]core.Request, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLRequests(data)
	default:
		return decodeJSONRequests(data)
	}
}

func decodeJSONRequests(data []byte) ([]core.Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var reqs []core.Request
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, fmt.Errorf("failed to parse requests: %w", err)
		}
		return reqs, nil
	}

	var wrapped requestFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}
	return wrapped.Modifications, nil
}

func decodeYAMLRequests(data []byte) ([]core.Request, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var reqs []core.Request
		if err := root.Decode(&reqs); err != nil {
			return nil, fmt.Errorf("failed to parse requests: %w", err)
		}
		return reqs, nil
	}

	var wrapped requestFile
	if err := root.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}
	return wrapped.Modifications, nil
}
