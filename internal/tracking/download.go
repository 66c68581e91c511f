package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
)

const (
	maxRedirects     = 10
	maxDownloadBytes = 50 << 20
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var actionParam = regexp.MustCompile(`action=[^&]+`)

// DownloadLink turns a public share link into a direct download link by
// forcing action=download.
func DownloadLink(shareLink string) (string, error) {
	link := strings.TrimSpace(shareLink)
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "share link must be an http(s) URL")
	}
	switch {
	case strings.Contains(link, "action="):
		return actionParam.ReplaceAllString(link, "action=download"), nil
	case strings.Contains(link, "?"):
		return link + "&action=download", nil
	default:
		return link + "?action=download", nil
	}
}

// Downloader fetches the spreadsheet over plain HTTP. Public share links need
// no credentials.
type Downloader struct {
	client *http.Client
}

func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{client: &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}}
}

// Fetch downloads the workbook behind shareLink.
func (d *Downloader) Fetch(ctx context.Context, shareLink string) ([]byte, error) {
	link, err := DownloadLink(shareLink)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build download request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", xlsxContentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unable to download file; ensure the share link is publicly accessible")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.Newf(pkgerrors.CodeDependency, "download failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read download body")
	}
	if len(body) > maxDownloadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "downloaded file exceeds size limit")
	}
	if len(body) == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("empty body"), "no data received from share link")
	}
	return body, nil
}
