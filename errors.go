package lve

import (
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError wraps a non-success vk.Result into an error annotated with the
// calling frame, so creation failures can be traced back to the exact
// Vulkan call that produced them. Returns nil for vk.Success.
func NewError(ret vk.Result) error {
	if ret != vk.Success {
		pc, _, _, ok := runtime.Caller(1)
		if !ok {
			return fmt.Errorf("vulkan error: %s (%d)",
				vk.Error(ret).Error(), ret)
		}
		frame := newStackFrame(pc)
		return fmt.Errorf("vulkan error: %s (%d) on %s",
			vk.Error(ret).Error(), ret, frame.String())
	}
	return nil
}

type stackFrame struct {
	fn   string
	file string
	line int
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{fn: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{fn: fn.Name(), file: file, line: line}
}

func (f stackFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.fn, f.file, f.line)
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}
