package navigator

// Navigator tracks an optional selection over the visible task list.
// It never holds task data, only an index into whatever the caller renders.
type Navigator struct {
	index    int
	selected bool
}

// Selected returns the current index and whether anything is selected.
func (n Navigator) Selected() (int, bool) {
	return n.index, n.selected
}

// Next moves down, wrapping from the last row to the first.
func (n *Navigator) Next(length int) {
	if length <= 0 {
		n.Clear()
		return
	}
	i := 0
	if n.selected && n.index < length-1 {
		i = n.index + 1
	}
	n.Select(i)
}

// Previous moves up, wrapping from the first row to the last.
func (n *Navigator) Previous(length int) {
	if length <= 0 {
		n.Clear()
		return
	}
	i := 0
	if n.selected {
		if n.index == 0 || n.index > length-1 {
			i = length - 1
		} else {
			i = n.index - 1
		}
	}
	n.Select(i)
}

func (n *Navigator) Select(i int) {
	n.index = i
	n.selected = true
}

func (n *Navigator) Clear() {
	n.index = 0
	n.selected = false
}

// Clamp keeps the selection valid after the visible list shrank.
func (n *Navigator) Clamp(length int) {
	if !n.selected {
		return
	}
	if length <= 0 {
		n.Clear()
		return
	}
	if n.index >= length {
		n.index = length - 1
	}
}
