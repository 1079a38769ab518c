package input

import (
	"encoding/json"
	"testing"
)

func TestTypeFromHIDUsage(t *testing.T) {
	tests := []struct {
		page  uint16
		usage uint16
		want  DeviceType
	}{
		{0x01, 0x01, TypePointer},
		{0x01, 0x02, TypeMouse},
		{0x01, 0x04, TypeJoystick},
		{0x01, 0x05, TypeGamepad},
		{0x01, 0x06, TypeKeyboard},
		{0x01, 0x07, TypeKeypad},
		{0x01, 0x39, TypeOtherGenericDesktop},
		{0x0D, 0x01, TypeDigitizer},
		{0x0D, 0x02, TypePen},
		{0x0D, 0x03, TypeLightPen},
		{0x0D, 0x04, TypeTouchScreen},
		{0x0D, 0x05, TypeTouchPad},
		{0x0D, 0x06, TypeWhiteboard},
		{0x0D, 0x22, TypeOtherDigitizer},
		{0x0C, 0x01, TypeUnknownHID},
		{0xFF00, 0x01, TypeVendorDefined},
		{0xFFA7, 0x00, TypeVendorDefined},
	}
	for _, tt := range tests {
		if got := TypeFromHIDUsage(tt.page, tt.usage); got != tt.want {
			t.Errorf("TypeFromHIDUsage(%#x, %#x) = %v, want %v", tt.page, tt.usage, got, tt.want)
		}
	}
}

func TestIsPointer(t *testing.T) {
	pointers := []DeviceType{
		TypeDummy, TypePointer, TypeMouse, TypeDigitizer, TypePen,
		TypeLightPen, TypeTouchScreen, TypeTouchPad, TypeWhiteboard, TypeOtherDigitizer,
	}
	for _, d := range pointers {
		if !d.IsPointer() {
			t.Errorf("%v should be a pointer device", d)
		}
	}

	others := []DeviceType{
		TypeUnknown, TypeUnknownHID, TypeJoystick, TypeGamepad,
		TypeKeyboard, TypeKeypad, TypeOtherGenericDesktop, TypeVendorDefined,
	}
	for _, d := range others {
		if d.IsPointer() {
			t.Errorf("%v should not be a pointer device", d)
		}
	}
}

func TestEnumJSONRoundTrip(t *testing.T) {
	t.Run("device type", func(t *testing.T) {
		for d := TypeUnknown; d <= TypeVendorDefined; d++ {
			b, err := json.Marshal(d)
			if err != nil {
				t.Fatalf("marshal %v: %v", d, err)
			}
			var back DeviceType
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("unmarshal %s: %v", b, err)
			}
			if back != d {
				t.Errorf("round trip of %v gave %v", d, back)
			}
		}
	})

	t.Run("status", func(t *testing.T) {
		in := Status{Kind: StatusActive, Positioning: PositioningAbsolute}
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatal(err)
		}
		var back Status
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatal(err)
		}
		if back != in {
			t.Errorf("round trip of %v gave %v", in, back)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		var d DeviceType
		if err := json.Unmarshal([]byte(`"hyperdrive"`), &d); err == nil {
			t.Error("expected error for unknown device type name")
		}
	})
}

func TestStatusString(t *testing.T) {
	s := Status{Kind: StatusActive, Positioning: PositioningRelative}
	if s.String() != "active(relative)" {
		t.Errorf("unexpected status string %q", s.String())
	}
	if (Status{Kind: StatusIdle}).String() != "idle" {
		t.Errorf("unexpected idle string")
	}
}
