package view

// Disclosure is the open/closed state of one row's detail overlay.
type Disclosure struct {
	open bool
}

func (d *Disclosure) Open() {
	d.open = true
}

func (d *Disclosure) Close() {
	d.open = false
}

func (d Disclosure) IsOpen() bool {
	return d.open
}
