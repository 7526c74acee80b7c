// memory.go implements the simulated buffer allocator.

package hwsim

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

const (
	pageSize = 4096

	// cpuMappingBase is where the simulated CPU mappings start.
	cpuMappingBase = uintptr(0xC0000000)
)

type plane struct {
	addr  uint32
	vaddr uintptr
	size  uint32
}

// Buffer is a simulated device buffer.
type Buffer struct {
	id      uint64
	capture bool
	planes  []plane
}

var _ hw.Buffer = (*Buffer)(nil)

func (b *Buffer) NumPlanes() int {
	return len(b.planes)
}

func (b *Buffer) PlaneAddr(idx int) uint32 {
	return b.planes[idx].addr
}

func (b *Buffer) PlaneVAddr(idx int) uintptr {
	return b.planes[idx].vaddr
}

func (b *Buffer) PlaneSize(idx int) uint32 {
	return b.planes[idx].size
}

func (b *Buffer) IsCapture() bool {
	return b.capture
}

func (b *Buffer) String() string {
	return fmt.Sprintf("buffer#%d(planes:%d, capture:%v)", b.id, len(b.planes), b.capture)
}

type Memory struct {
	locker    xsync.Mutex
	nextAddr  uint32
	nextID    uint64
	live      map[uint64]*Buffer
	protected bool
	suspended bool

	allocs      atomic.Uint64
	frees       atomic.Uint64
	syncs       atomic.Uint64
	syncedBytes atomic.Uint64
}

func newMemory(baseAddr uint32) *Memory {
	return &Memory{
		nextAddr: baseAddr,
		live:     map[uint64]*Buffer{},
	}
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

func (m *Memory) Alloc(
	ctx context.Context,
	capture bool,
	planeSizes ...uint32,
) (_ hw.Buffer, _err error) {
	logger.Debugf(ctx, "Alloc: capture:%v sizes:%v", capture, planeSizes)
	defer func() { logger.Debugf(ctx, "/Alloc: %v", _err) }()

	if len(planeSizes) == 0 {
		return nil, fmt.Errorf("no planes requested")
	}

	return xsync.DoR2(ctx, &m.locker, func() (hw.Buffer, error) {
		if m.suspended {
			return nil, fmt.Errorf("the allocator is suspended")
		}
		m.nextID++
		buf := &Buffer{
			id:      m.nextID,
			capture: capture,
		}
		var total uint64
		for _, size := range planeSizes {
			if size == 0 {
				return nil, fmt.Errorf("zero sized plane requested")
			}
			addr := m.nextAddr
			buf.planes = append(buf.planes, plane{
				addr:  addr,
				vaddr: cpuMappingBase + uintptr(addr),
				size:  size,
			})
			m.nextAddr = alignUp(addr+size, pageSize)
			total += uint64(size)
		}
		m.live[buf.id] = buf
		m.allocs.Inc()
		logger.Tracef(ctx, "allocated %s of %s", buf, humanize.Bytes(total))
		return buf, nil
	})
}

func (m *Memory) Free(ctx context.Context, buf hw.Buffer) error {
	logger.Debugf(ctx, "Free")
	defer logger.Debugf(ctx, "/Free")
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("%T was not allocated by this allocator", buf)
	}
	return xsync.DoR1(ctx, &m.locker, func() error {
		if _, ok := m.live[b.id]; !ok {
			return fmt.Errorf("%s is not allocated", b)
		}
		delete(m.live, b.id)
		m.frees.Inc()
		return nil
	})
}

func (m *Memory) SetProtected(ctx context.Context, enable bool) error {
	logger.Debugf(ctx, "SetProtected: %v", enable)
	m.locker.Do(ctx, func() {
		m.protected = enable
	})
	return nil
}

func (m *Memory) IsProtected(ctx context.Context) bool {
	return xsync.DoR1(ctx, &m.locker, func() bool {
		return m.protected
	})
}

func (m *Memory) Sync(ctx context.Context, regions geometry.PlaneBuckets) error {
	logger.Tracef(ctx, "Sync: %s", humanize.Bytes(regions.TotalSize()))
	m.syncs.Inc()
	m.syncedBytes.Add(regions.TotalSize())
	return nil
}

func (m *Memory) Suspend(ctx context.Context) error {
	logger.Debugf(ctx, "Suspend")
	m.locker.Do(ctx, func() {
		m.suspended = true
	})
	return nil
}

func (m *Memory) Resume(ctx context.Context) error {
	logger.Debugf(ctx, "Resume")
	m.locker.Do(ctx, func() {
		m.suspended = false
	})
	return nil
}

// LiveBuffers returns the amount of allocated and not freed buffers.
func (m *Memory) LiveBuffers(ctx context.Context) int {
	return xsync.DoR1(ctx, &m.locker, func() int {
		return len(m.live)
	})
}
