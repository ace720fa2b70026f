package videos

// Explorer advertises the browsable video groupings of a gateway. It is a
// capability listing rebuilt on demand, not cached data.
type Explorer struct {
	Sections []ExplorerSection `json:"sections"`
}

// ExplorerSection groups collections that share an origin (library,
// playlists, albums, channels, folders).
type ExplorerSection struct {
	Name        string               `json:"name"`
	Collections []ExplorerCollection `json:"collections"`
}

// ExplorerCollection names a listing method plus the options needed to drive
// a subsequent Videos call.
type ExplorerCollection struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"`
	Options map[string]string `json:"options,omitempty"`
}
