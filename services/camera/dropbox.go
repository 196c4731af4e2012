package camera

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/homewatch/homewatch/config"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// UploadPause separates the still and clip uploads.
const UploadPause = 2 * time.Second

var dropboxEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.dropbox.com/oauth2/authorize",
	TokenURL: "https://api.dropboxapi.com/oauth2/token",
}

type uploader interface {
	Upload(path string, content io.Reader) error
}

type filesUploader struct {
	client files.Client
}

func (self filesUploader) Upload(path string, content io.Reader) error {
	_, err := self.client.Upload(files.NewUploadArg(path), content)
	return err
}

// Dropbox uploads artifacts to an app folder.
type Dropbox struct {
	conf     config.DropboxConf
	endpoint oauth2.Endpoint
	client   func() (uploader, error)
	sleep    func(time.Duration)
}

func NewDropbox(conf config.DropboxConf) *Dropbox {
	self := &Dropbox{conf: conf, endpoint: dropboxEndpoint, sleep: time.Sleep}
	self.client = self.login
	return self
}

func (self *Dropbox) Name() string {
	return "dropbox"
}

// refreshing is an http client that exchanges the refresh token for a
// fresh access token whenever the current one has expired. The configured
// access token carries no expiry, so it is treated as expired already.
func (self *Dropbox) refreshing(ctx context.Context) *http.Client {
	oauth := &oauth2.Config{
		ClientID:     self.conf.AppKey,
		ClientSecret: self.conf.AppSecret,
		Endpoint:     self.endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  self.conf.AccessToken,
		RefreshToken: self.conf.RefreshToken,
		Expiry:       time.Unix(1, 0),
	}
	return oauth2.NewClient(ctx, oauth.TokenSource(ctx, token))
}

// login builds a client. A refresh token with the app key lets the access
// token be refreshed as it expires.
func (self *Dropbox) login() (uploader, error) {
	conf := dropbox.Config{Token: self.conf.AccessToken}
	if self.conf.RefreshToken != "" && self.conf.AppKey != "" {
		conf.Client = self.refreshing(context.Background())
	} else if self.conf.AccessToken == "" {
		return nil, errors.New("no dropbox access token")
	}
	return filesUploader{files.New(conf)}, nil
}

func (self *Dropbox) RemotePaths(stamp string) (image, clip string) {
	image = path.Join(self.conf.Folder, "image_capture_"+stamp+".jpg")
	clip = path.Join(self.conf.Folder, "video_capture_"+stamp+".mp4")
	return
}

func upload(client uploader, local, remote string) error {
	file, err := os.Open(local)
	if err != nil {
		return err
	}
	defer file.Close()
	return errors.Wrapf(client.Upload(remote, file), "uploading %s", remote)
}

// Copy uploads the still, pauses, then uploads the clip.
func (self *Dropbox) Copy(artifact *Artifact) error {
	client, err := self.client()
	if err != nil {
		return errors.Wrap(err, "dropbox auth")
	}
	image, clip := self.RemotePaths(artifact.Stamp)
	if err := upload(client, artifact.ImagePath, image); err != nil {
		return err
	}
	self.sleep(UploadPause)
	return upload(client, artifact.ClipPath, clip)
}
