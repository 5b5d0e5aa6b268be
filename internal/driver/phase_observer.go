package driver

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// CatalogDone and CatalogFailed close the events of one catalog; Name
	// is empty.
	CatalogDone
	CatalogFailed
)

// PhaseEvent describes a phase boundary of the catalog at Path. Note is set
// on PhaseEnd.
type PhaseEvent struct {
	Path   string
	Name   string
	Status PhaseStatus
	Note   string
}

// PhaseObserver receives phase events emitted during Compile. With
// CompileFiles it is called from several goroutines.
type PhaseObserver func(PhaseEvent)
