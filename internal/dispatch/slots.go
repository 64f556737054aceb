package dispatch

// slotN builds the entry point for an event slot with N arguments after the
// object. The result must be assignable to the listener field, so a signature
// mismatch between slot and field does not compile.

func slot0[O any](sel Selector) func(data any, obj O) {
	return func(data any, obj O) {
		contextOf(data).invoke(sel, obj)
	}
}

func slot1[O, A1 any](sel Selector) func(data any, obj O, a1 A1) {
	return func(data any, obj O, a1 A1) {
		contextOf(data).invoke(sel, obj, a1)
	}
}

func slot2[O, A1, A2 any](sel Selector) func(data any, obj O, a1 A1, a2 A2) {
	return func(data any, obj O, a1 A1, a2 A2) {
		contextOf(data).invoke(sel, obj, a1, a2)
	}
}

func slot3[O, A1, A2, A3 any](sel Selector) func(data any, obj O, a1 A1, a2 A2, a3 A3) {
	return func(data any, obj O, a1 A1, a2 A2, a3 A3) {
		contextOf(data).invoke(sel, obj, a1, a2, a3)
	}
}

func slot4[O, A1, A2, A3, A4 any](sel Selector) func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4) {
	return func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4) {
		contextOf(data).invoke(sel, obj, a1, a2, a3, a4)
	}
}

func slot5[O, A1, A2, A3, A4, A5 any](sel Selector) func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) {
	return func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) {
		contextOf(data).invoke(sel, obj, a1, a2, a3, a4, a5)
	}
}

func slot6[O, A1, A2, A3, A4, A5, A6 any](sel Selector) func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) {
	return func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) {
		contextOf(data).invoke(sel, obj, a1, a2, a3, a4, a5, a6)
	}
}

func slot8[O, A1, A2, A3, A4, A5, A6, A7, A8 any](sel Selector) func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6, a7 A7, a8 A8) {
	return func(data any, obj O, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6, a7 A7, a8 A8) {
		contextOf(data).invoke(sel, obj, a1, a2, a3, a4, a5, a6, a7, a8)
	}
}
