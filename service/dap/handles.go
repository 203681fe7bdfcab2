package dap

// startHandle is the first id handed out, so that a zero reference keeps
// meaning "none" in DAP messages.
const startHandle = 1000

// handlesMap assigns sequential ids to comparable values. Asking twice for
// the same value returns the same id until the map is reset.
type handlesMap struct {
	next int
	vals map[int]interface{}
	ids  map[interface{}]int
}

func newHandlesMap() *handlesMap {
	hs := &handlesMap{}
	hs.reset()
	return hs
}

func (hs *handlesMap) reset() {
	hs.next = startHandle
	hs.vals = make(map[int]interface{})
	hs.ids = make(map[interface{}]int)
}

func (hs *handlesMap) create(value interface{}) int {
	if id, ok := hs.ids[value]; ok {
		return id
	}
	id := hs.next
	hs.next++
	hs.vals[id] = value
	hs.ids[value] = id
	return id
}

func (hs *handlesMap) get(handle int) (interface{}, bool) {
	v, ok := hs.vals[handle]
	return v, ok
}

// frameRef identifies a stack frame of a thread, the --thread and --frame
// arguments of MI commands.
type frameRef struct {
	threadID string
	level    int
}

type frameHandlesMap struct {
	m *handlesMap
}

func newFrameHandlesMap() *frameHandlesMap {
	return &frameHandlesMap{newHandlesMap()}
}

func (hs *frameHandlesMap) create(ref frameRef) int { return hs.m.create(ref) }
func (hs *frameHandlesMap) reset()                  { hs.m.reset() }

func (hs *frameHandlesMap) get(handle int) (frameRef, bool) {
	v, ok := hs.m.get(handle)
	if !ok {
		return frameRef{}, false
	}
	return v.(frameRef), true
}

// varobjHandlesMap maps variable references to the names of the varobjs
// whose children they expand to.
type varobjHandlesMap struct {
	m *handlesMap
}

func newVarobjHandlesMap() *varobjHandlesMap {
	return &varobjHandlesMap{newHandlesMap()}
}

func (hs *varobjHandlesMap) create(name string) int { return hs.m.create(name) }
func (hs *varobjHandlesMap) reset()                 { hs.m.reset() }

func (hs *varobjHandlesMap) get(handle int) (string, bool) {
	v, ok := hs.m.get(handle)
	if !ok {
		return "", false
	}
	return v.(string), true
}
