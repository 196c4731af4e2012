package camera

// StorageMode selects where a cycle's artifacts are copied. Values arrive
// from the storage topic and are kept as received.
type StorageMode string

const (
	StorageLocal  StorageMode = "local"
	StorageRemote StorageMode = "remote"
	StorageBoth   StorageMode = "both"
)

// CopiesLocal reports whether the file server receives a copy.
func (m StorageMode) CopiesLocal() bool {
	return m == StorageLocal || m == StorageBoth
}

// CopiesRemote reports whether Dropbox receives a copy.
func (m StorageMode) CopiesRemote() bool {
	return m == StorageRemote || m == StorageBoth
}

func (m StorageMode) Valid() bool {
	return m.CopiesLocal() || m.CopiesRemote()
}
