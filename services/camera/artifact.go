package camera

import (
	"path/filepath"

	"github.com/homewatch/homewatch/util"
)

const (
	ImageFile = "image.jpg"
	ClipFile  = "temp_video.mp4"
)

// Artifact is the still and clip produced by one capture cycle. The local
// files are reused every cycle.
type Artifact struct {
	Image     []byte
	ImagePath string
	ClipPath  string
	// DDMMYYYY-HHMMSS of the triggering motion
	Stamp string
}

func NewArtifact(dir string, stamp string) *Artifact {
	dir = util.ExpandUser(dir)
	return &Artifact{
		ImagePath: filepath.Join(dir, ImageFile),
		ClipPath:  filepath.Join(dir, ClipFile),
		Stamp:     stamp,
	}
}
