package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Address mirrors the address_t composite Postgres type. Deliveries are
// campus-local, so the shape is building/room/zone rather than street lines.
type Address struct {
	Building   string   `json:"building"`
	Room       *string  `json:"room,omitempty"`
	Zone       string   `json:"zone"`
	Landmark   *string  `json:"landmark,omitempty"`
	PostalCode string   `json:"postal_code"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Value marshals Address into a Postgres composite literal.
func (a Address) Value() (driver.Value, error) {
	if strings.TrimSpace(a.Building) == "" {
		return nil, fmt.Errorf("address: missing building")
	}
	if strings.TrimSpace(a.Zone) == "" {
		return nil, fmt.Errorf("address: missing zone")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return nil, fmt.Errorf("address: missing postal_code")
	}

	parts := []string{
		quoteCompositeString(a.Building),
		quoteCompositeNullable(a.Room),
		quoteCompositeString(a.Zone),
		quoteCompositeNullable(a.Landmark),
		quoteCompositeString(a.PostalCode),
		quoteCompositeNullableFloat(a.Lat),
		quoteCompositeNullableFloat(a.Lng),
	}

	return "(" + strings.Join(parts, ",") + ")", nil
}

// Scan decodes the Postgres composite literal.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}

	fields, err := parseComposite(raw, 7)
	if err != nil {
		return err
	}

	a.Building = fields[0]
	a.Room = newCompositeNullable(fields[1])
	a.Zone = fields[2]
	a.Landmark = newCompositeNullable(fields[3])
	a.PostalCode = fields[4]

	lat, err := parseCompositeNullableFloat(fields[5])
	if err != nil {
		return fmt.Errorf("address: parse lat %w", err)
	}
	a.Lat = lat

	lng, err := parseCompositeNullableFloat(fields[6])
	if err != nil {
		return fmt.Errorf("address: parse lng %w", err)
	}
	a.Lng = lng

	return nil
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
