// Copyright (c) 2026 Komira. All rights reserved.

/*
Package position persists per-device reading positions.

A position records the zero-based page index a device last viewed in a
chapter. It is device-local: it survives page reloads on the same
device but never synchronizes across devices (cross-device continuity is the
bookmark's job, handled elsewhere).

Positions are best-effort. A failed save never interrupts reading, and an
unreadable stored value is treated the same as no stored value at all.
*/
package position

import (
	"context"
	"fmt"
)

// Key builds the storage key for a chapter position on a device.
//
// The manga identifier and chapter number pair uniquely names a chapter from
// the reader's point of view, whether the chapter is approved or pending.
func Key(mangaID string, chapterNumber int) string {
	return fmt.Sprintf("reading_position_%s_%d", mangaID, chapterNumber)
}

// # Store Contract

// Store persists reading positions for a single scope of devices.
type Store interface {
	/*
		Load retrieves the saved page index for a chapter on a device.

		Returns:
			int  - the zero-based page index.
			bool - false when no usable position is stored (absent or corrupt).
	*/
	Load(ctx context.Context, deviceID, mangaID string, chapterNumber int) (int, bool)

	/*
		Save records the current page index for a chapter on a device.

		Description:
			Best-effort: storage failures are logged by the implementation and
			swallowed. Reading continues regardless.
	*/
	Save(ctx context.Context, deviceID, mangaID string, chapterNumber, pageIndex int)
}
