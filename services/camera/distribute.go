package camera

import (
	"log"

	"github.com/homewatch/homewatch/services"
)

// Copier copies a cycle's artifacts to one storage target.
type Copier interface {
	Name() string
	Copy(artifact *Artifact) error
}

// Distributor fans artifacts out to the file server and Dropbox according
// to the storage mode. Failures are logged and never retried.
type Distributor struct {
	Local  Copier
	Remote Copier
}

func (self *Distributor) copy(copier Copier, target string, artifact *Artifact) {
	if copier == nil {
		log.Printf("No %s storage configured, skipping copy", target)
		return
	}
	log.Printf("Copying %s to %s", artifact.Stamp, copier.Name())
	err := copier.Copy(artifact)
	services.Observe(services.DistributionsTotal, err, target)
	if err != nil {
		log.Printf("Error copying to %s: %s", copier.Name(), err)
		return
	}
	log.Printf("Copied still and clip to %s", copier.Name())
}

// Distribute copies to the local file server first, then the remote store.
func (self *Distributor) Distribute(mode StorageMode, artifact *Artifact) {
	if !mode.Valid() {
		log.Printf("Storage mode %q matches no target, nothing copied", mode)
		return
	}
	if mode.CopiesLocal() {
		self.copy(self.Local, "local", artifact)
	}
	if mode.CopiesRemote() {
		self.copy(self.Remote, "remote", artifact)
	}
}
