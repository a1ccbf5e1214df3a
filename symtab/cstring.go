package symtab

import "unsafe"

// maxCString bounds GoString scans of unterminated native buffers.
const maxCString = 4096

// GoString copies the NUL-terminated C string at ptr into a Go string.
func GoString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for length < maxCString {
		if *(*byte)(unsafe.Add(p, length)) == 0 {
			break
		}
		length++
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}
