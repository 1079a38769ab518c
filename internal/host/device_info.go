package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// stableDeviceID derives an id that survives reconnection and reboots.
// The /dev/input/by-id symlink name is best; devices without one (built-in
// touchpads, virtual devices) fall back to a slug of name and USB ids.
func stableDeviceID(eventPath, name string) string {
	eventName := filepath.Base(eventPath)

	byIDDir := "/dev/input/by-id"
	if entries, err := os.ReadDir(byIDDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !strings.Contains(entry.Name(), "event") {
				continue
			}
			target, err := os.Readlink(filepath.Join(byIDDir, entry.Name()))
			if err != nil {
				continue
			}
			if filepath.Base(target) == eventName {
				return cleanLinkName(entry.Name())
			}
		}
	}

	sysPath := fmt.Sprintf("/sys/class/input/%s/device", eventName)
	vendor := readSysAttr(filepath.Join(sysPath, "id/vendor"))
	product := readSysAttr(filepath.Join(sysPath, "id/product"))

	id := slugify(name)
	if vendor != "" || product != "" {
		id = fmt.Sprintf("%s-%s:%s", id, vendor, product)
	}
	return id
}

// cleanLinkName strips the bus prefix and event-type suffixes from a
// by-id symlink name.
func cleanLinkName(name string) string {
	name = strings.TrimPrefix(name, "usb-")
	name = strings.TrimSuffix(name, "-event-kbd")
	name = strings.TrimSuffix(name, "-event-mouse")
	name = strings.TrimSuffix(name, "-event-if01")
	name = strings.TrimSuffix(name, "-event-if02")
	name = strings.TrimSuffix(name, "-if01")
	name = strings.TrimSuffix(name, "-if02")
	return name
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func readSysAttr(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// sysfsProduct returns a "vendor:product" string for USB devices, empty
// otherwise.
func sysfsProduct(eventPath string) string {
	sysPath := fmt.Sprintf("/sys/class/input/%s/device", filepath.Base(eventPath))
	vendor := readSysAttr(filepath.Join(sysPath, "id/vendor"))
	product := readSysAttr(filepath.Join(sysPath, "id/product"))
	if vendor == "" && product == "" {
		return ""
	}
	return vendor + ":" + product
}

// usagePairFor infers the HID (page, usage) pair a device would report,
// from its evdev capability sets. The kernel does not expose the pair
// directly, but the capability mix pins it down well enough.
func usagePairFor(caps map[int][]int) (page, usage uint16) {
	keys := caps[evdev.EV_KEY]
	rel := caps[evdev.EV_REL]
	abs := caps[evdev.EV_ABS]

	hasKey := func(code int) bool {
		for _, k := range keys {
			if k == code {
				return true
			}
		}
		return false
	}
	hasAbs := func(code int) bool {
		for _, a := range abs {
			if a == code {
				return true
			}
		}
		return false
	}
	hasRel := func(code int) bool {
		for _, r := range rel {
			if r == code {
				return true
			}
		}
		return false
	}

	switch {
	case hasKey(evdev.BTN_TOOL_PEN) && hasAbs(evdev.ABS_X):
		return 0x0D, 0x02 // pen
	case hasKey(evdev.BTN_TOOL_FINGER) && hasKey(evdev.BTN_TOUCH) && hasAbs(evdev.ABS_X):
		return 0x0D, 0x05 // touch pad
	case hasKey(evdev.BTN_TOUCH) && hasAbs(evdev.ABS_X):
		return 0x0D, 0x04 // touch screen
	case hasAbs(evdev.ABS_X) && hasAbs(evdev.ABS_PRESSURE):
		return 0x0D, 0x01 // generic digitizer
	case hasRel(evdev.REL_X) && hasRel(evdev.REL_Y) && hasKey(evdev.BTN_LEFT):
		return 0x01, 0x02 // mouse
	case hasKey(evdev.BTN_JOYSTICK):
		return 0x01, 0x04
	case hasKey(evdev.BTN_GAMEPAD):
		return 0x01, 0x05
	case hasKey(evdev.KEY_A) && hasKey(evdev.KEY_Z) && hasKey(evdev.KEY_SPACE):
		return 0x01, 0x06 // keyboard
	case hasKey(evdev.KEY_KP0) && hasKey(evdev.KEY_KPENTER):
		return 0x01, 0x07 // keypad
	case hasRel(evdev.REL_X) || hasRel(evdev.REL_Y):
		return 0x01, 0x01 // pointer without buttons
	}
	return 0, 0
}

type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Linux _IOC request encoding.
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func evioCGAbs(absCode int) uintptr {
	// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
	size := uint32(unsafe.Sizeof(absInfo{}))
	return uintptr(uint32(iocRead)<<iocDirShift | uint32('E')<<iocTypeShift |
		uint32(0x40+absCode)<<iocNRShift | size<<iocSizeShift)
}

// absRange reads the min/max of one absolute axis straight from the
// device node.
func absRange(eventPath string, absCode int) (min, max int32, err error) {
	fd, err := unix.Open(eventPath, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return 0, 0, err
	}
	defer unix.Close(fd)

	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGAbs(absCode), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return 0, 0, errno
	}
	if info.Max <= info.Min {
		return 0, 0, fmt.Errorf("axis %d reports empty range", absCode)
	}
	return info.Min, info.Max, nil
}
