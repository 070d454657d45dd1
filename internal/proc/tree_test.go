package proc

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamewatch/flamewatch/internal/testutil"
)

func newTestController(t *testing.T, inspector Inspector, forceKilled *[]int32) *TreeController {
	t.Helper()
	return NewTreeController(inspector, testutil.NewTestLogger(t),
		WithGracePeriod(10*time.Millisecond),
		WithForceKill(func(pid int32) error {
			*forceKilled = append(*forceKilled, pid)
			return nil
		}))
}

// opIndex returns the position of the first op matching verb and pid, or -1.
func opIndex(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestTerminateTree_RootOnly(t *testing.T) {
	log := &opLog{}
	root := &fakeProcess{pid: 1, running: true, log: log}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)

	assert.Equal(t, []string{"term 1"}, log.all())
	assert.Empty(t, forceKilled)
	assert.False(t, root.running)
}

func TestTerminateTree_DescendantsBeforeRoot(t *testing.T) {
	log := &opLog{}
	grandchild := &fakeProcess{pid: 3, running: true, log: log}
	child := &fakeProcess{pid: 2, running: true, log: log, children: []*fakeProcess{grandchild}}
	root := &fakeProcess{pid: 1, running: true, log: log, children: []*fakeProcess{child}}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)

	ops := log.all()
	rootTerm := opIndex(ops, "term 1")
	require.GreaterOrEqual(t, rootTerm, 0)
	for _, op := range []string{"term 2", "term 3"} {
		idx := opIndex(ops, op)
		require.GreaterOrEqual(t, idx, 0, "missing %s", op)
		assert.Less(t, idx, rootTerm, "%s must precede the root terminate", op)
	}
	assert.False(t, root.running)
	assert.False(t, child.running)
	assert.False(t, grandchild.running)
}

func TestTerminateTree_StubbornDescendantGetsKilled(t *testing.T) {
	log := &opLog{}
	stubborn := &fakeProcess{pid: 3, running: true, ignoreTerm: true, log: log}
	polite := &fakeProcess{pid: 2, running: true, log: log}
	root := &fakeProcess{pid: 1, running: true, log: log, children: []*fakeProcess{polite, stubborn}}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)

	ops := log.all()
	// Graceful signals precede any forced signal.
	killIdx := opIndex(ops, "kill 3")
	require.GreaterOrEqual(t, killIdx, 0)
	assert.Less(t, opIndex(ops, "term 2"), killIdx)
	assert.Less(t, opIndex(ops, "term 3"), killIdx)
	// The polite descendant never gets a forced signal.
	assert.Equal(t, -1, opIndex(ops, "kill 2"))
	assert.False(t, stubborn.running)
}

func TestTerminateTree_Depth3AllStubborn(t *testing.T) {
	log := &opLog{}
	level3 := &fakeProcess{pid: 4, running: true, ignoreTerm: true, log: log}
	level2 := &fakeProcess{pid: 3, running: true, ignoreTerm: true, log: log, children: []*fakeProcess{level3}}
	level1 := &fakeProcess{pid: 2, running: true, ignoreTerm: true, log: log, children: []*fakeProcess{level2}}
	root := &fakeProcess{pid: 1, running: true, log: log, children: []*fakeProcess{level1}}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)

	ops := log.all()
	for _, pid := range []string{"2", "3", "4"} {
		termIdx := opIndex(ops, "term "+pid)
		killIdx := opIndex(ops, "kill "+pid)
		require.GreaterOrEqual(t, termIdx, 0)
		require.GreaterOrEqual(t, killIdx, 0, "stubborn descendant %s must be force killed", pid)
		assert.Less(t, termIdx, killIdx)
	}
	// Every member of the tree is down afterwards.
	for _, p := range []*fakeProcess{root, level1, level2, level3} {
		assert.False(t, p.running, "pid %d still running", p.pid)
	}
}

func TestTerminateTree_StubbornRootFallsBack(t *testing.T) {
	log := &opLog{}
	root := &fakeProcess{pid: 1, running: true, ignoreTerm: true, log: log}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)

	assert.Equal(t, []string{"term 1"}, log.all())
	assert.Equal(t, []int32{1}, forceKilled)
}

func TestTerminateTree_UnresolvableRoot(t *testing.T) {
	var forceKilled []int32
	tc := newTestController(t, &fakeInspector{}, &forceKilled)

	tc.TerminateTree(4242)

	assert.Equal(t, []int32{4242}, forceKilled)
}

func TestTerminateTree_Idempotent(t *testing.T) {
	log := &opLog{}
	child := &fakeProcess{pid: 2, running: true, log: log}
	root := &fakeProcess{pid: 1, running: true, log: log, children: []*fakeProcess{child}}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)
	opsAfterFirst := len(log.all())

	// Second call on a dead tree is a no-op beyond the PID-level fallback.
	tc.TerminateTree(1)

	assert.Equal(t, opsAfterFirst, len(log.all()))
	assert.Equal(t, []int32{1}, forceKilled)
}

func TestTerminateTree_DeadDescendantDoesNotBlockSiblings(t *testing.T) {
	log := &opLog{}
	// Enumerated but already exited; its Terminate errors.
	dead := &fakeProcess{pid: 2, running: false, log: log}
	alive := &fakeProcess{pid: 3, running: true, log: log}
	root := &fakeProcess{pid: 1, running: true, log: log, children: []*fakeProcess{dead, alive}}
	inspector := &fakeInspector{}
	inspector.register(root)

	var forceKilled []int32
	tc := newTestController(t, inspector, &forceKilled)

	tc.TerminateTree(1)

	ops := strings.Join(log.all(), ",")
	assert.Contains(t, ops, "term 3")
	assert.Contains(t, ops, "term 1")
	assert.False(t, alive.running)
	assert.Empty(t, forceKilled)
}
