package lve

import (
	"strings"
	"unsafe"
)

// safeString terminates s with a NUL byte as expected by the C side of the
// Vulkan bindings.
func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	for i := range list {
		list[i] = safeString(list[i])
	}
	return list
}

// checkExisting keeps only the required names present in actual and reports
// how many were missing.
func checkExisting(actual, required []string) (existing []string, missing int) {
	for _, req := range required {
		r := strings.TrimRight(req, "\x00")
		found := false
		for _, act := range actual {
			if r == strings.TrimRight(act, "\x00") {
				found = true
				break
			}
		}
		if found {
			existing = append(existing, safeString(req))
		} else {
			missing++
		}
	}
	return existing, missing
}

// sliceUint32 reinterprets SPIR-V bytecode as the uint32 words Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	if len(data) == 0 {
		return nil
	}
	return (*[m / 4]uint32)(unsafe.Pointer(&data[0]))[:len(data)/4]
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
