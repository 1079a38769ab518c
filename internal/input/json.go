package input

import (
	"encoding/json"
	"fmt"
)

// Enum values cross the control socket as their names, not as bare numbers.

var (
	deviceTypeByName  = map[string]DeviceType{}
	positioningByName = map[string]Positioning{}
	statusKindByName  = map[string]StatusKind{}
)

func init() {
	for t := TypeUnknown; t <= TypeVendorDefined; t++ {
		deviceTypeByName[t.String()] = t
	}
	for p := PositioningUnknown; p <= PositioningAbsolute; p++ {
		positioningByName[p.String()] = p
	}
	for k := StatusUnknown; k <= StatusDisconnected; k++ {
		statusKindByName[k.String()] = k
	}
}

func (t DeviceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DeviceType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, ok := deviceTypeByName[name]
	if !ok {
		return fmt.Errorf("unknown device type %q", name)
	}
	*t = v
	return nil
}

func (p Positioning) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Positioning) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, ok := positioningByName[name]
	if !ok {
		return fmt.Errorf("unknown positioning %q", name)
	}
	*p = v
	return nil
}

func (k StatusKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *StatusKind) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, ok := statusKindByName[name]
	if !ok {
		return fmt.Errorf("unknown status kind %q", name)
	}
	*k = v
	return nil
}
