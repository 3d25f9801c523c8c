package burndown

// itemState tracks one item's membership in the sprint scope.
// The invariants (done implies in scope; leaving scope clears done) are
// enforced by the board transition methods, never at call sites.
type itemState struct {
	inScope bool
	done    bool
}

// board is the replay state: per-item flags plus the two aggregate counters.
type board struct {
	items     map[string]*itemState
	scope     int
	completed int
}

func newBoard() *board {
	return &board{items: make(map[string]*itemState)}
}

func (b *board) item(key string) *itemState {
	st, ok := b.items[key]
	if !ok {
		st = &itemState{}
		b.items[key] = st
	}
	return st
}

// setInScope applies an in-scope flag transition. Re-applying the current
// flag is a no-op. Leaving scope also clears the done flag: an item cannot be
// done while out of scope. Counters are guarded against going negative.
func (b *board) setInScope(key string, flag bool) (scopeChanged, doneChanged bool) {
	st := b.item(key)
	if st.inScope == flag {
		return false, false
	}
	st.inScope = flag

	if flag {
		b.scope++
		return true, false
	}

	if b.scope > 0 {
		b.scope--
		scopeChanged = true
	}
	if st.done {
		st.done = false
		if b.completed > 0 {
			b.completed--
			doneChanged = true
		}
	}
	return scopeChanged, doneChanged
}

// setDone applies a done flag transition. Marking an out-of-scope item done
// implicitly puts it in scope first. Counters move by exactly one unit per
// actual flag transition.
func (b *board) setDone(key string, flag bool) (scopeChanged, doneChanged bool) {
	st := b.item(key)

	if flag && !st.inScope {
		scopeChanged, _ = b.setInScope(key, true)
	}

	if st.done == flag {
		return scopeChanged, false
	}
	st.done = flag

	if flag {
		b.completed++
		return scopeChanged, true
	}
	if b.completed > 0 {
		b.completed--
		doneChanged = true
	}
	return scopeChanged, doneChanged
}
