package scanner

import "context"

// BarcodeSource is a restartable stream of complete barcodes. The device
// protocol (HID key events, stdin lines) stays behind this boundary; the
// pipeline only ever sees "barcode string arrived".
type BarcodeSource interface {
	// Next blocks until a complete barcode is available. It returns the
	// context's error once cancellation is observed, and a domain
	// DeviceError when the underlying device fails mid-run.
	Next(ctx context.Context) (string, error)
	Close() error
}
