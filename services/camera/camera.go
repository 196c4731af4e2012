package camera

import (
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/homewatch/homewatch/config"
	"github.com/pkg/errors"
)

// Camera takes stills and records clips to local files.
type Camera interface {
	Snapshot(path string) error
	StartRecording(path string) error
	StopRecording() error
}

// Streamer is a camera that keeps a live feed running between captures.
// StartStream starts the feed, or restarts it if it has exited, and is a
// no-op while it runs.
type Streamer interface {
	Camera
	StartStream() error
	StopStream() error
}

var execCommand = exec.Command

func NewCamera(conf config.CameraConf) (Camera, error) {
	switch conf.Protocol {
	case "libcamera", "":
		return &Libcamera{VFlip: conf.VFlip}, nil
	case "rtsp":
		if conf.Url == "" {
			return nil, errors.New("rtsp camera needs a url")
		}
		return &Rtsp{Url: conf.Url}, nil
	case "stream":
		if conf.Url == "" {
			return nil, errors.New("stream camera needs the rtsp url to publish to")
		}
		return &Stream{Rtsp: Rtsp{Url: conf.Url}, VFlip: conf.VFlip}, nil
	}
	return nil, errors.Errorf("unknown camera protocol %q", conf.Protocol)
}

// process is a long running capture command stopped with an interrupt.
type process struct {
	cmd *exec.Cmd
}

func (self *process) start(name string, args ...string) error {
	if self.cmd != nil {
		return errors.New("already recording")
	}
	cmd := execCommand(name, args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", name)
	}
	self.cmd = cmd
	return nil
}

func (self *process) stop() error {
	if self.cmd == nil {
		return errors.New("not recording")
	}
	cmd := self.cmd
	self.cmd = nil
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		return errors.Wrap(err, "stopping recording")
	}
	err := cmd.Wait()
	if _, ok := err.(*exec.ExitError); ok {
		// interrupted encoders exit non-zero after flushing the file
		return nil
	}
	return err
}

// Libcamera drives the Raspberry Pi camera through the rpicam apps.
type Libcamera struct {
	VFlip bool
	process
}

func (self *Libcamera) transform() []string {
	if self.VFlip {
		return []string{"--vflip"}
	}
	return nil
}

func (self *Libcamera) snapshotArgs(path string) []string {
	args := []string{"--nopreview", "--immediate", "--encoding", "jpg", "-o", path}
	return append(args, self.transform()...)
}

func (self *Libcamera) recordArgs(path string) []string {
	args := []string{"--nopreview", "-t", "0",
		"--width", "1920", "--height", "1080", "--framerate", "30",
		"--codec", "libav", "--libav-format", "mp4", "-o", path}
	return append(args, self.transform()...)
}

func (self *Libcamera) Snapshot(path string) error {
	out, err := execCommand("rpicam-still", self.snapshotArgs(path)...).CombinedOutput()
	return errors.Wrapf(err, "rpicam-still: %s", lastLine(out))
}

func (self *Libcamera) StartRecording(path string) error {
	return self.start("rpicam-vid", self.recordArgs(path)...)
}

func (self *Libcamera) StopRecording() error {
	return self.stop()
}

// Rtsp grabs stills and clips from a network stream with ffmpeg.
type Rtsp struct {
	Url string
	process
}

func (self *Rtsp) snapshotArgs(path string) []string {
	return []string{"-y", "-loglevel", "error", "-rtsp_transport", "tcp",
		"-i", self.Url, "-vframes", "1", "-f", "mjpeg", path}
}

func (self *Rtsp) recordArgs(path string) []string {
	return []string{"-y", "-loglevel", "error", "-rtsp_transport", "tcp",
		"-i", self.Url, "-c", "copy", "-f", "mp4", path}
}

func (self *Rtsp) Snapshot(path string) error {
	out, err := execCommand("ffmpeg", self.snapshotArgs(path)...).CombinedOutput()
	return errors.Wrapf(err, "ffmpeg: %s", lastLine(out))
}

func (self *Rtsp) StartRecording(path string) error {
	return self.start("ffmpeg", self.recordArgs(path)...)
}

func (self *Rtsp) StopRecording() error {
	return self.stop()
}

func lastLine(out []byte) string {
	trimmed := strings.TrimRight(string(out), "\r\n")
	if trimmed == "" {
		return "no output"
	}
	return trimmed[strings.LastIndex(trimmed, "\n")+1:]
}

// Stream publishes the Pi camera as a live RTSP feed with rpicam-vid and
// takes stills and clips from that feed.
type Stream struct {
	Rtsp
	VFlip bool

	live   *exec.Cmd
	exited chan error
}

func (self *Stream) streamArgs() []string {
	args := []string{"--nopreview", "-t", "0", "--inline",
		"--width", "1920", "--height", "1080", "--framerate", "30",
		"--codec", "libav", "--libav-format", "rtsp", "-o", self.Url}
	if self.VFlip {
		args = append(args, "--vflip")
	}
	return args
}

func (self *Stream) StartStream() error {
	if self.exited != nil {
		select {
		case err := <-self.exited:
			log.Println("Live stream exited, restarting:", err)
		default:
			return nil
		}
	}
	self.live, self.exited = nil, nil
	cmd := execCommand("rpicam-vid", self.streamArgs()...)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "starting live stream")
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	self.live, self.exited = cmd, exited
	log.Println("Live stream publishing to", self.Url)
	return nil
}

func (self *Stream) StopStream() error {
	if self.live == nil {
		return nil
	}
	// the process may already be gone, in which case exited has its result
	self.live.Process.Signal(os.Interrupt)
	err := <-self.exited
	self.live, self.exited = nil, nil
	if _, ok := err.(*exec.ExitError); ok {
		return nil
	}
	return err
}
