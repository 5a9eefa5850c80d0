//go:build linux

package sensor

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	edidWidthOffset  = 21
	edidHeightOffset = 22
	centimetresPerIn = 2.54
)

func (a *linuxAdapter) Capabilities() Capabilities {
	var c Capabilities

	inputs := a.inputDeviceNames()
	c.Stylus = stylusGeneration(inputs)
	for _, name := range inputs {
		if strings.Contains(strings.ToLower(name), "fingerprint") {
			c.TouchID = true
		}
	}

	for _, ps := range a.powerSupplies() {
		if ps.Type == "Wireless" {
			c.WirelessCharging = true
		}
	}

	a.display(&c)
	a.cameras(&c)
	a.motion(&c)

	return c
}

func (a *linuxAdapter) inputDeviceNames() []string {
	f, err := os.Open(a.proc("bus", "input", "devices"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "N: Name=") {
			continue
		}
		names = append(names, strings.Trim(strings.TrimPrefix(line, "N: Name="), `"`))
	}
	return names
}

// stylusGeneration reports "second" for pens that expose a separate eraser
// tool and "first" for any other pen or stylus digitizer.
func stylusGeneration(inputs []string) string {
	var pen, eraser bool
	for _, name := range inputs {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "pen") || strings.Contains(lower, "stylus") {
			pen = true
			if strings.Contains(lower, "eraser") {
				eraser = true
			}
		}
	}
	switch {
	case pen && eraser:
		return "second"
	case pen:
		return "first"
	default:
		return ""
	}
}

// display fills resolution, diagonal and PPI from the first connected DRM
// connector. Diagonal and PPI stay zero without a usable EDID.
func (a *linuxAdapter) display(c *Capabilities) {
	for _, dir := range entries(a.sys("class", "drm")) {
		if status, _ := readString(filepath.Join(dir, "status")); status != "connected" {
			continue
		}
		if mode, ok := readFirstLine(filepath.Join(dir, "modes")); ok {
			c.ResolutionX, c.ResolutionY = parseMode(mode)
		}
		if edid, err := os.ReadFile(filepath.Join(dir, "edid")); err == nil && len(edid) > edidHeightOffset {
			w := float64(edid[edidWidthOffset])
			h := float64(edid[edidHeightOffset])
			if w > 0 && h > 0 {
				c.Diagonal = math.Round(math.Hypot(w, h)/centimetresPerIn*10) / 10
			}
		}
		if c.Diagonal > 0 && c.ResolutionX > 0 && c.ResolutionY > 0 {
			c.PPI = int(math.Round(math.Hypot(float64(c.ResolutionX), float64(c.ResolutionY)) / c.Diagonal))
		}
		return
	}
}

func parseMode(mode string) (int, int) {
	xs, ys, ok := strings.Cut(mode, "x")
	if !ok {
		return 0, 0
	}
	// modes may carry a suffix such as "1920x1080i"
	ys = strings.TrimRightFunc(ys, func(r rune) bool { return r < '0' || r > '9' })
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil {
		return 0, 0
	}
	return x, y
}

func (a *linuxAdapter) cameras(c *Capabilities) {
	for _, dir := range entries(a.sys("class", "video4linux")) {
		name, ok := readString(filepath.Join(dir, "name"))
		if !ok {
			continue
		}
		if strings.Contains(name, "IR") {
			c.FaceID = true
			continue
		}
		c.Wide = true
	}
	for _, dir := range entries(a.sys("class", "leds")) {
		lower := strings.ToLower(filepath.Base(dir))
		if strings.Contains(lower, "flash") || strings.Contains(lower, "torch") {
			c.Torch = true
		}
	}
}

func (a *linuxAdapter) motion(c *Capabilities) {
	for _, dir := range entries(a.sys("bus", "iio", "devices")) {
		name, ok := readString(filepath.Join(dir, "name"))
		if !ok {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "accel") {
			c.Steps, c.Pace, c.Distance, c.Cadence = true, true, true, true
		}
		if strings.Contains(lower, "press") || strings.Contains(lower, "baro") {
			c.Floors = true
		}
	}
}
