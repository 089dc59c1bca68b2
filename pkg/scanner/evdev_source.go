package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"scandiary/domain"
)

// Barcode scanners enumerate as keyboard HID devices: each scan arrives as
// digit key-down events terminated by ENTER.
var keyDigits = map[evdev.EvCode]byte{
	evdev.KEY_0: '0', evdev.KEY_1: '1', evdev.KEY_2: '2', evdev.KEY_3: '3',
	evdev.KEY_4: '4', evdev.KEY_5: '5', evdev.KEY_6: '6', evdev.KEY_7: '7',
	evdev.KEY_8: '8', evdev.KEY_9: '9',
	evdev.KEY_KP0: '0', evdev.KEY_KP1: '1', evdev.KEY_KP2: '2', evdev.KEY_KP3: '3',
	evdev.KEY_KP4: '4', evdev.KEY_KP5: '5', evdev.KEY_KP6: '6', evdev.KEY_KP7: '7',
	evdev.KEY_KP8: '8', evdev.KEY_KP9: '9',
}

const keyStateDown = 1

// digitFor maps a key code to its digit, if it is one.
func digitFor(code evdev.EvCode) (byte, bool) {
	d, ok := keyDigits[code]
	return d, ok
}

func isEndOfScan(code evdev.EvCode) bool {
	return code == evdev.KEY_ENTER || code == evdev.KEY_KPENTER
}

type evdevSource struct {
	dev  *evdev.InputDevice
	path string
	log  *slog.Logger
}

// OpenEvdevSource opens the scanner device and grabs it exclusively, so
// scans never leak to the console and a second agent instance fails fast
// instead of silently splitting input. An empty path auto-detects.
func OpenEvdevSource(path string, log *slog.Logger) (BarcodeSource, error) {
	if path == "" {
		detected, err := FindScannerDevice()
		if err != nil {
			return nil, err
		}
		path = detected
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, &domain.DeviceError{Path: path, Err: err}
	}
	if err := dev.Grab(); err != nil {
		dev.Close()
		return nil, &domain.DeviceError{Path: path, Err: fmt.Errorf("exclusive grab failed (another instance running?): %w", err)}
	}

	name, _ := dev.Name()
	log.Info("listening on input device", "path", path, "name", name)
	return &evdevSource{dev: dev, path: path, log: log}, nil
}

// FindScannerDevice scans /dev/input for something that looks like a
// barcode scanner.
func FindScannerDevice() (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", &domain.DeviceError{Err: err}
	}
	for _, p := range paths {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, "barcode") || strings.Contains(name, "scanner") || strings.Contains(name, "hid") {
			return p.Path, nil
		}
	}
	return "", &domain.DeviceError{Err: fmt.Errorf("no scanner-like device found among %d input devices; set SCANNER_DEVICE", len(paths))}
}

func (s *evdevSource) Next(ctx context.Context) (string, error) {
	var buf []byte
	for {
		// Cancellation is checked around every blocking read; shutdown
		// closes the device, which unblocks ReadOne.
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ev, err := s.dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", &domain.DeviceError{Path: s.path, Err: err}
		}
		if ev.Type != evdev.EV_KEY || ev.Value != keyStateDown {
			continue
		}

		if isEndOfScan(ev.Code) {
			if len(buf) == 0 {
				continue
			}
			return string(buf), nil
		}
		if d, ok := digitFor(ev.Code); ok {
			buf = append(buf, d)
		}
	}
}

func (s *evdevSource) Close() error {
	_ = s.dev.Ungrab()
	return s.dev.Close()
}
