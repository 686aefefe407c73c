package util

import (
	"fmt"
	"unsafe"

	"github.com/kataras/golog"
)

// ArrayToString renders every element as zero-padded hex, most significant nibble first.
func ArrayToString[T uint8 | uint16 | uint32 | uint64](arr []T) string {
	ret := ""

	for _, v := range arr {
		bitWidth := int(unsafe.Sizeof(v) * 8)
		ret += fmt.Sprintf("%0[1]*[2]x", bitWidth/4, v)
	}

	return ret
}

// NewLogger returns a leveled logger whose lines start with prefix.
func NewLogger(prefix, level string) *golog.Logger {
	return golog.New().SetPrefix(prefix).SetLevel(level)
}
