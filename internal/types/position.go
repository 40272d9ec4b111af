package types

import "fmt"

// Position is the holding state on a given date.
type Position int

const (
	PositionFlat Position = iota
	PositionLong
)

func (p Position) String() string {
	switch p {
	case PositionFlat:
		return "FLAT"
	case PositionLong:
		return "LONG"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	switch string(text) {
	case "FLAT":
		*p = PositionFlat
	case "LONG":
		*p = PositionLong
	default:
		return fmt.Errorf("unknown position %q", string(text))
	}

	return nil
}
