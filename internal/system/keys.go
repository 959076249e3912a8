package system

import "encoding/binary"

// Linux input-event-codes.h
const (
	KeyEsc   = 1
	KeyQ     = 16
	KeySpace = 57
	KeyF4    = 62
)

const evKey = 0x01

// KeyMap binds evdev key codes to actions.
type KeyMap map[uint16]func()

// keyPresses returns the codes of the EV_KEY press records in buf. A record
// is a timeval of tvSize bytes followed by type, code and value; repeats,
// releases and a trailing partial record are skipped.
func keyPresses(buf []byte, tvSize int) []uint16 {
	size := tvSize + 8
	var codes []uint16
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off+tvSize : off+size]
		typ := binary.LittleEndian.Uint16(rec[0:2])
		code := binary.LittleEndian.Uint16(rec[2:4])
		value := int32(binary.LittleEndian.Uint32(rec[4:8]))
		if typ == evKey && value == 1 {
			codes = append(codes, code)
		}
	}
	return codes
}
