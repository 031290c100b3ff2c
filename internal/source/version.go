package source

// Version identifies one immutable state of a document's content.
// Versions are totally ordered and strictly increase with every applied
// edit batch; they are never reused.
type Version int64

// NoVersion is the zero value, before any document state exists.
const NoVersion Version = 0

// FirstVersion is the version a freshly opened document starts at.
const FirstVersion Version = 1

func (v Version) After(other Version) bool  { return v > other }
func (v Version) Before(other Version) bool { return v < other }
