package camera

import (
	"io"
	"log"
	"net"
	"os"
	"path"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/util"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const SSHTimeout = 10 * time.Second

// remoteFS is the part of an sftp session used for copying.
type remoteFS interface {
	Create(path string) (io.WriteCloser, error)
	Close() error
}

type sftpSession struct {
	conn   *ssh.Client
	client *sftp.Client
}

func (self *sftpSession) Create(path string) (io.WriteCloser, error) {
	return self.client.Create(path)
}

func (self *sftpSession) Close() error {
	self.client.Close()
	return self.conn.Close()
}

// FileServer copies artifacts over ssh with password authentication.
type FileServer struct {
	conf    config.FileServerConf
	connect func() (remoteFS, error)
}

func NewFileServer(conf config.FileServerConf) *FileServer {
	self := &FileServer{conf: conf}
	self.connect = self.dial
	return self
}

func (self *FileServer) Name() string {
	return "file server " + self.conf.Host
}

func (self *FileServer) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if self.conf.KnownHosts == "" {
		log.Println("Warning: FILE_SERVER_KNOWN_HOSTS not set, accepting any host key")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return knownhosts.New(util.ExpandUser(self.conf.KnownHosts))
}

func hostPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "22")
}

func (self *FileServer) dial() (remoteFS, error) {
	callback, err := self.hostKeyCallback()
	if err != nil {
		return nil, errors.Wrap(err, "known hosts")
	}
	conf := &ssh.ClientConfig{
		User:            self.conf.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(self.conf.Password)},
		HostKeyCallback: callback,
		Timeout:         SSHTimeout,
	}
	conn, err := ssh.Dial("tcp", hostPort(self.conf.Host), conf)
	if err != nil {
		return nil, errors.Wrap(err, "ssh")
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "sftp")
	}
	return &sftpSession{conn: conn, client: client}, nil
}

// RemotePaths are the destination names for a stamp.
func (self *FileServer) RemotePaths(stamp string) (clip, image string) {
	clip = path.Join(self.conf.Path, "video_capture_"+stamp+".mp4")
	image = path.Join(self.conf.Path, "image_"+stamp+".jpg")
	return
}

func put(fs remoteFS, local, remote string) error {
	in, err := os.Open(local)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := fs.Create(remote)
	if err != nil {
		return errors.Wrapf(err, "creating %s", remote)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", remote)
	}
	return out.Close()
}

// Copy puts the clip then the still on the file server.
func (self *FileServer) Copy(artifact *Artifact) error {
	fs, err := self.connect()
	if err != nil {
		return err
	}
	defer fs.Close()

	clip, image := self.RemotePaths(artifact.Stamp)
	if err := put(fs, artifact.ClipPath, clip); err != nil {
		return err
	}
	return put(fs, artifact.ImagePath, image)
}
