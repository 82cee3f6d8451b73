package mapfactory

// Notifier observes the progress of a map run. Calls are synchronous and
// never concurrent with each other.
type Notifier interface {
	// Plotted is called once per output cell with the number of cells
	// processed so far, whether or not a datum was stored.
	Plotted(total, done uint64)
	// Done is called once after the last cell.
	Done(total uint64)
}

// Notifiers fans progress out to several observers in order.
type Notifiers []Notifier

// Plotted forwards to every observer.
func (n Notifiers) Plotted(total, done uint64) {
	for _, o := range n {
		o.Plotted(total, done)
	}
}

// Done forwards to every observer.
func (n Notifiers) Done(total uint64) {
	for _, o := range n {
		o.Done(total)
	}
}

// NotifierFuncs adapts plain functions to Notifier. Nil fields are
// skipped.
type NotifierFuncs struct {
	OnPlotted func(total, done uint64)
	OnDone    func(total uint64)
}

// Plotted calls OnPlotted.
func (f NotifierFuncs) Plotted(total, done uint64) {
	if f.OnPlotted != nil {
		f.OnPlotted(total, done)
	}
}

// Done calls OnDone.
func (f NotifierFuncs) Done(total uint64) {
	if f.OnDone != nil {
		f.OnDone(total)
	}
}

type nopNotifier struct{}

func (nopNotifier) Plotted(uint64, uint64) {}
func (nopNotifier) Done(uint64)            {}
