package emu

// StoreEntry is one in-flight store: the bytes it wrote and the bytes it
// overwrote, so a later bus-error report can undo it.
type StoreEntry struct {
	Size     uint8
	Addr     uint64
	NewValue uint64
	OldValue uint64
}

// LoadEntry is one in-flight load: which register it targets, the value
// that register held immediately before the load, and whether the entry
// is still live (an invalidated entry is skipped by scans but keeps its
// slot so indices stay stable within one step).
type LoadEntry struct {
	Size      uint8
	Addr      uint64
	TargetReg uint8
	PrevValue uint64
	Valid     bool
}

// StoreQueue is a bounded FIFO of in-flight stores outside DCCM.
type StoreQueue struct {
	entries []StoreEntry
	max     int
}

// NewStoreQueue creates a store queue holding at most max entries.
func NewStoreQueue(max int) *StoreQueue {
	return &StoreQueue{max: max}
}

// Push appends an entry, dropping the oldest if the queue is full.
func (q *StoreQueue) Push(e StoreEntry) {
	q.entries = append(q.entries, e)
	if len(q.entries) > q.max {
		q.entries = q.entries[1:]
	}
}

// Len returns the number of entries currently queued.
func (q *StoreQueue) Len() int { return len(q.entries) }

// At returns the i'th entry, oldest first.
func (q *StoreQueue) At(i int) StoreEntry { return q.entries[i] }

// RemoveAt deletes the entry at index i.
func (q *StoreQueue) RemoveAt(i int) {
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
}

// Clear drops every in-flight entry, used by FENCE (spec.md §4.4).
func (q *StoreQueue) Clear() { q.entries = q.entries[:0] }

// LoadQueue is a bounded FIFO of in-flight loads outside DCCM.
type LoadQueue struct {
	entries []LoadEntry
	max     int
}

// NewLoadQueue creates a load queue holding at most max entries.
func NewLoadQueue(max int) *LoadQueue {
	return &LoadQueue{max: max}
}

// Push appends an entry, dropping the oldest if the queue is full.
func (q *LoadQueue) Push(e LoadEntry) {
	q.entries = append(q.entries, e)
	if len(q.entries) > q.max {
		q.entries = q.entries[1:]
	}
}

// Len returns the number of entries currently queued (including invalidated
// ones still occupying a slot).
func (q *LoadQueue) Len() int { return len(q.entries) }

// At returns the i'th entry, oldest first.
func (q *LoadQueue) At(i int) LoadEntry { return q.entries[i] }

// RemoveAt deletes the entry at index i.
func (q *LoadQueue) RemoveAt(i int) {
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
}

// Clear drops every in-flight entry, used by FENCE (spec.md §4.4).
func (q *LoadQueue) Clear() { q.entries = q.entries[:0] }

// RemoveYoungestMatchingReg removes the youngest valid entry targeting reg,
// used by the run loop's non-load-retirement step 9: once an instruction
// reads a register as a source, any in-flight load still "owning" that
// register has effectively been waited on and its queue entry is retired.
func (q *LoadQueue) RemoveYoungestMatchingReg(reg uint8) bool {
	for i := len(q.entries) - 1; i >= 0; i-- {
		if q.entries[i].Valid && q.entries[i].TargetReg == reg {
			q.RemoveAt(i)
			return true
		}
	}
	return false
}

// InvalidateOlderMatching marks every valid entry targeting reg as invalid,
// used when an instruction writes reg: any older in-flight load to the same
// destination can no longer be the "live value" for it.
func (q *LoadQueue) InvalidateOlderMatching(reg uint8) {
	for i := range q.entries {
		if q.entries[i].Valid && q.entries[i].TargetReg == reg {
			q.entries[i].Valid = false
		}
	}
}

// ApplyStoreException implements spec.md §4.4.2's apply_store_exception.
// It always latches MDSEAC and raises a store-exception NMI, even when
// rollback itself cannot proceed, because the MDSEAC CSR write must be
// recorded as an observable effect regardless (§5's concurrency note).
func (h *Hart) ApplyStoreException(addr uint64) bool {
	h.latchBusError(addr, causeStoreBusError)

	if !h.storeQueueEnabled {
		return true
	}

	matchIdx := -1
	matches := 0
	for i, e := range h.storeQueue.entries {
		if addr >= e.Addr && addr < e.Addr+uint64(e.Size) {
			matches++
			matchIdx = i
		}
	}
	if matches != 1 {
		return false
	}

	faulting := h.storeQueue.entries[matchIdx]
	h.undoStore(faulting)

	// Replay any younger store whose bytes overlap the undone range.
	for i := matchIdx + 1; i < len(h.storeQueue.entries); i++ {
		younger := h.storeQueue.entries[i]
		if overlaps(faulting.Addr, uint64(faulting.Size), younger.Addr, uint64(younger.Size)) {
			h.redoStore(younger)
		}
	}

	h.storeQueue.RemoveAt(matchIdx)
	return true
}

func overlaps(a1 uint64, n1 uint64, a2 uint64, n2 uint64) bool {
	return a1 < a2+n2 && a2 < a1+n1
}

func (h *Hart) undoStore(e StoreEntry) {
	h.writeMemSized(e.Addr, e.Size, e.OldValue)
}

func (h *Hart) redoStore(e StoreEntry) {
	h.writeMemSized(e.Addr, e.Size, e.NewValue)
}

func (h *Hart) writeMemSized(addr uint64, size uint8, v uint64) {
	switch size {
	case 1:
		h.mem.WriteByte(addr, uint8(v))
	case 2:
		h.mem.WriteHalf(addr, uint16(v))
	case 4:
		h.mem.WriteWord(addr, uint32(v))
	case 8:
		h.mem.WriteDouble(addr, v)
	}
}

// ApplyLoadException implements spec.md §4.4.2's apply_load_exception.
// Invalid (already-invalidated) entries do not contribute to the
// "exactly one match" count and are skipped entirely when searching for
// the single matching entry or for a younger same-target entry -- an
// entry that no longer represents a live in-flight load cannot be the
// thing a bus error is reported against (see DESIGN.md open-question
// resolution).
func (h *Hart) ApplyLoadException(addr uint64) bool {
	h.latchBusError(addr, causeLoadBusError)

	if !h.loadQueueEnabled {
		return true
	}

	matchIdx := -1
	matches := 0
	for i, e := range h.loadQueue.entries {
		if !e.Valid {
			continue
		}
		if addr >= e.Addr && addr < e.Addr+uint64(e.Size) {
			matches++
			matchIdx = i
		}
	}
	if matches != 1 {
		return false
	}

	target := h.loadQueue.entries[matchIdx].TargetReg

	youngerIdx := -1
	for i := matchIdx + 1; i < len(h.loadQueue.entries); i++ {
		if h.loadQueue.entries[i].Valid && h.loadQueue.entries[i].TargetReg == target {
			youngerIdx = i
			break
		}
	}

	if youngerIdx == -1 {
		h.intRegs.Poke(target, h.loadQueue.entries[matchIdx].PrevValue)
	} else {
		h.loadQueue.entries[youngerIdx].PrevValue = h.loadQueue.entries[matchIdx].PrevValue
	}

	for i := 0; i <= matchIdx; i++ {
		if h.loadQueue.entries[i].Valid && h.loadQueue.entries[i].TargetReg == target {
			h.loadQueue.entries[i].Valid = false
		}
	}

	return true
}

// ApplyLoadFinished implements spec.md §4.4.2's apply_load_finished: a
// non-faulting completion notification. matchOldest selects whether the
// oldest or newest queue entry at addr is the one being completed.
func (h *Hart) ApplyLoadFinished(addr uint64, matchOldest bool) {
	idx := -1
	if matchOldest {
		for i, e := range h.loadQueue.entries {
			if e.Valid && e.Addr == addr {
				idx = i
				break
			}
		}
	} else {
		for i := len(h.loadQueue.entries) - 1; i >= 0; i-- {
			if h.loadQueue.entries[i].Valid && h.loadQueue.entries[i].Addr == addr {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return
	}

	target := h.loadQueue.entries[idx].TargetReg
	prev := h.loadQueue.entries[idx].PrevValue

	for i := idx + 1; i < len(h.loadQueue.entries); i++ {
		if h.loadQueue.entries[i].Valid && h.loadQueue.entries[i].TargetReg == target {
			h.loadQueue.entries[i].PrevValue = prev
			break
		}
	}

	h.loadQueue.RemoveAt(idx)
}
