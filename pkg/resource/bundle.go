package resource

import (
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"path"
)

// UserAgentStyleSheet is the URL of the built-in user-agent stylesheet.
const UserAgentStyleSheet = "bundle://user-agent.css"

//go:embed bundle/*.css
var bundled embed.FS

// readBundle serves bundle:// URLs from the embedded files. The host and
// path together name the file.
func readBundle(uri string, u *url.URL) (*Resource, error) {
	name := path.Join("bundle", u.Host, u.Path)
	body, err := fs.ReadFile(bundled, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return &Resource{URL: uri, ContentType: contentTypeByExt(name), Body: body}, nil
}
