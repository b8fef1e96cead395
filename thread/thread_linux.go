package thread

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// schedFIFO is the SCHED_FIFO scheduling policy.
const schedFIFO = 1

// SetAffinity pins the calling thread to the cpu.
func SetAffinity(cpu int) error {
	if cpu < 0 || cpu >= runtime.NumCPU() {
		return fmt.Errorf("cpu %d out of range [0, %d)", cpu, runtime.NumCPU())
	}
	var set unix.CPUSet
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// SetRealtimePriority switches the calling thread to SCHED_FIFO.
func SetRealtimePriority(priority int) error {
	return unix.SchedSetAttr(0, &unix.SchedAttr{
		Policy:   schedFIFO,
		Priority: uint32(priority),
	}, 0)
}

// SetName sets name of the calling thread.
func SetName(name string) error {
	if len(name) > 15 {
		name = name[:15]
	}
	p, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0)
}

// Name returns name of the calling thread.
func Name() (string, error) {
	var buf [16]byte
	if err := unix.Prctl(unix.PR_GET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(buf[:]), nil
}

// LockMemory locks current and future pages of the process in RAM, so the
// real-time thread never takes a page fault.
func LockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}

// CPUTime returns CPU time consumed by the calling thread.
func CPUTime() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0
	}
	return time.Duration(ts.Nano())
}
