package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bnema/mousemux/internal/display"
	"github.com/bnema/mousemux/internal/logger"
)

// Monitor topology and cursor queries go through the running compositor's
// own tooling; there is no portable Wayland protocol for either.

// DetectMonitors queries the current topology without a running host,
// used by the monitors command.
func DetectMonitors() ([]display.Monitor, error) {
	return compositorMonitors(detectCompositor())
}

func detectCompositor() string {
	if desktop := strings.TrimSpace(os.Getenv("XDG_CURRENT_DESKTOP")); desktop != "" {
		switch strings.ToLower(desktop) {
		case "hyprland":
			return "hyprland"
		case "sway":
			return "sway"
		}
	}

	for process, name := range map[string]string{
		"Hyprland": "hyprland",
		"sway":     "sway",
	} {
		if exec.Command("pgrep", "-x", process).Run() == nil {
			return name
		}
	}
	return ""
}

func compositorMonitors(compositor string) ([]display.Monitor, error) {
	var (
		monitors []display.Monitor
		err      error
	)
	switch compositor {
	case "hyprland":
		monitors, err = monitorsHyprland()
	case "sway":
		monitors, err = monitorsSway()
	default:
		return monitorsWlrRandr()
	}
	if err != nil {
		logger.Debugf("compositor query failed (%v), trying wlr-randr", err)
		return monitorsWlrRandr()
	}
	return monitors, nil
}

func monitorsHyprland() ([]display.Monitor, error) {
	output, err := exec.Command("hyprctl", "monitors", "-j").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run hyprctl: %w", err)
	}

	var hyprMonitors []struct {
		ID      int     `json:"id"`
		Name    string  `json:"name"`
		Width   int     `json:"width"`
		Height  int     `json:"height"`
		X       int     `json:"x"`
		Y       int     `json:"y"`
		Scale   float64 `json:"scale"`
		Focused bool    `json:"focused"`
	}
	if err := json.Unmarshal(output, &hyprMonitors); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}

	var monitors []display.Monitor
	for _, hm := range hyprMonitors {
		scale := hm.Scale
		if scale == 0 {
			scale = 1.0
		}
		// hyprctl reports physical pixels; layout coordinates are scaled.
		monitors = append(monitors, display.Monitor{
			ID:      fmt.Sprintf("%d", hm.ID),
			Name:    hm.Name,
			X:       int32(hm.X),
			Y:       int32(hm.Y),
			Width:   int32(math.Round(float64(hm.Width) / scale)),
			Height:  int32(math.Round(float64(hm.Height) / scale)),
			Scale:   scale,
			Primary: hm.Focused,
		})
	}
	return monitors, nil
}

func monitorsSway() ([]display.Monitor, error) {
	output, err := exec.Command("swaymsg", "-t", "get_outputs", "-r").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run swaymsg: %w", err)
	}

	var swayOutputs []struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
		Rect   struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"rect"`
		Scale   float64 `json:"scale"`
		Focused bool    `json:"focused"`
	}
	if err := json.Unmarshal(output, &swayOutputs); err != nil {
		return nil, fmt.Errorf("failed to parse sway output: %w", err)
	}

	var monitors []display.Monitor
	for i, so := range swayOutputs {
		if !so.Active {
			continue
		}
		scale := so.Scale
		if scale == 0 {
			scale = 1.0
		}
		monitors = append(monitors, display.Monitor{
			ID:      fmt.Sprintf("%d", i),
			Name:    so.Name,
			X:       int32(so.Rect.X),
			Y:       int32(so.Rect.Y),
			Width:   int32(so.Rect.Width),
			Height:  int32(so.Rect.Height),
			Scale:   scale,
			Primary: so.Focused,
		})
	}
	return monitors, nil
}

func monitorsWlrRandr() ([]display.Monitor, error) {
	if _, err := exec.LookPath("wlr-randr"); err != nil {
		return nil, fmt.Errorf("wlr-randr not found: %w", err)
	}
	output, err := exec.Command("wlr-randr", "--json").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run wlr-randr: %w", err)
	}

	var outputs []struct {
		Name        string  `json:"name"`
		Enabled     bool    `json:"enabled"`
		Scale       float64 `json:"scale"`
		CurrentMode struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"current_mode"`
		Position struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"position"`
	}
	if err := json.Unmarshal(output, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse wlr-randr output: %w", err)
	}

	var monitors []display.Monitor
	for i, o := range outputs {
		if !o.Enabled || o.CurrentMode.Width == 0 || o.CurrentMode.Height == 0 {
			continue
		}
		scale := o.Scale
		if scale == 0 {
			scale = 1.0
		}
		monitors = append(monitors, display.Monitor{
			ID:      fmt.Sprintf("%d", i),
			Name:    o.Name,
			X:       int32(o.Position.X),
			Y:       int32(o.Position.Y),
			Width:   int32(math.Round(float64(o.CurrentMode.Width) / scale)),
			Height:  int32(math.Round(float64(o.CurrentMode.Height) / scale)),
			Scale:   scale,
			Primary: i == 0,
		})
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no active monitors found")
	}
	return monitors, nil
}

// compositorCursorPos reads the cursor position where the compositor
// exposes one. Only hyprland does; callers treat the error as "unknown".
func compositorCursorPos(compositor string) (display.Pos, error) {
	if compositor != "hyprland" {
		return display.Pos{}, fmt.Errorf("cursor position not exposed by %s", compositor)
	}

	output, err := exec.Command("hyprctl", "cursorpos", "-j").Output()
	if err != nil {
		return display.Pos{}, err
	}
	var pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.Unmarshal(output, &pos); err != nil {
		return display.Pos{}, fmt.Errorf("failed to parse cursorpos output: %w", err)
	}
	return display.Pos{X: int32(pos.X), Y: int32(pos.Y)}, nil
}

// watchMonitors subscribes to the compositor's own change feed and calls
// notify for every topology event. Unknown compositors get no feed; the
// periodic rescan still catches changes eventually.
func watchMonitors(ctx context.Context, compositor string, notify func()) {
	switch compositor {
	case "sway":
		go watchSway(ctx, notify)
	case "hyprland":
		go watchHyprland(ctx, notify)
	}
}

func watchSway(ctx context.Context, notify func()) {
	cmd := exec.CommandContext(ctx, "swaymsg", "-t", "subscribe", "-m", `["output"]`)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logger.Warnf("sway output subscription unavailable: %v", err)
		return
	}
	if err := cmd.Start(); err != nil {
		logger.Warnf("sway output subscription unavailable: %v", err)
		return
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		notify()
	}
	_ = cmd.Wait()
}

func watchHyprland(ctx context.Context, notify func()) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	runtime := os.Getenv("XDG_RUNTIME_DIR")
	if sig == "" || runtime == "" {
		logger.Warn("hyprland event socket not available")
		return
	}
	sock := filepath.Join(runtime, "hypr", sig, ".socket2.sock")

	conn, err := net.Dial("unix", sock)
	if err != nil {
		logger.Warnf("hyprland event socket: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "monitoradded") || strings.HasPrefix(line, "monitorremoved") {
			notify()
		}
	}
}
