package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFormat parses TOML descriptions. Only syntax errors are located.
type TOMLFormat struct{}

// Name implements Format.
func (TOMLFormat) Name() string { return "toml" }

// Extensions implements Format.
func (TOMLFormat) Extensions() []string { return []string{".toml"} }

// Parse implements Format.
func (TOMLFormat) Parse(filename string, data []byte) (*Tree, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, newParseError(filename, row, col, derr.Error(), err)
		}
		return nil, newParseError(filename, 0, 0, err.Error(), err)
	}

	root, err := normalize(raw)
	if err != nil {
		return nil, newParseError(filename, 0, 0, err.Error(), err)
	}

	return NewTree(filename, root.(map[string]any)), nil
}
