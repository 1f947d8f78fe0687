// Package engine owns every symbol's order book and the sticky routing that
// makes the books safe to mutate without locks. Each symbol is pinned to one
// worker at registration time; all of that symbol's commands run as tasks on
// that worker's queue and are therefore totally ordered, while different
// symbols on different workers proceed in parallel with no shared state.
package engine
