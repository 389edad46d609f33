package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PrintConfig captures the print job attached to a xerox order line,
// persisted as JSONB.
type PrintConfig struct {
	Pages        int     `json:"pages"`
	Copies       int     `json:"copies"`
	Color        bool    `json:"color"`
	DoubleSided  bool    `json:"double_sided"`
	PaperSize    string  `json:"paper_size"`
	Binding      *string `json:"binding,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// Value serializes the print config to JSON.
func (p *PrintConfig) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan decodes JSONB into the print config struct.
func (p *PrintConfig) Scan(value interface{}) error {
	if value == nil {
		*p = PrintConfig{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("print config: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, p)
}
