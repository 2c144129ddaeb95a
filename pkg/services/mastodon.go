package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"hugo-micropub/pkg/models"

	"golang.org/x/oauth2"
)

// Mastodon syndicates posts to a Mastodon server. Reposts of statuses on the
// same server become boosts; everything else becomes a new status, threaded
// when the post is a reply and carrying any photos as attachments.
type Mastodon struct {
	server string
	prefix string
	client *http.Client
}

func NewMastodon(target models.SyndicationTarget) *Mastodon {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: target.Token})
	return &Mastodon{
		server: strings.TrimRight(target.Server, "/"),
		prefix: target.Prefix,
		client: oauth2.NewClient(context.Background(), src),
	}
}

type mastodonStatus struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Account struct {
		DisplayName string `json:"display_name"`
		Acct        string `json:"acct"`
	} `json:"account"`
}

// Owns reports whether the URL points at this target's server.
func (m *Mastodon) Owns(u string) bool {
	return strings.HasPrefix(u, m.server+"/")
}

// statusID pulls the status id out of a status URL.
func statusID(u string) string {
	u = strings.TrimRight(u, "/")
	return u[strings.LastIndex(u, "/")+1:]
}

// FetchContext returns the author and text of a status, for quoting replies
// and reposts in the front matter.
func (m *Mastodon) FetchContext(ctx context.Context, u string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/statuses/%s", m.server, statusID(u))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", err
	}
	status, err := m.do(req)
	if err != nil {
		return "", "", err
	}
	return status.Account.DisplayName, status.Content, nil
}

// Syndicate publishes the post and returns the URL of the copy.
func (m *Mastodon) Syndicate(ctx context.Context, props models.PropertyMap, body, postURL string) (string, error) {
	if repost, ok := props["repost-of"].(string); ok && m.Owns(repost) {
		endpoint := fmt.Sprintf("%s/api/v1/statuses/%s/reblog", m.server, statusID(repost))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
		if err != nil {
			return "", err
		}
		status, err := m.do(req)
		if err != nil {
			return "", err
		}
		return status.URL, nil
	}

	form := url.Values{}
	if reply, ok := props["in-reply-to"].(string); ok && m.Owns(reply) {
		form.Set("in_reply_to_id", statusID(reply))
	}
	for _, p := range props.List("photo") {
		if id, err := m.uploadMedia(ctx, photoURL(p)); err == nil && id != "" {
			form.Add("media_ids[]", id)
		}
	}
	if title, ok := props["title"].(string); ok {
		// Announcing an article: prefix, title, then the canonical URL.
		form.Set("status", m.prefix+title+"\n"+postURL)
	} else {
		// A note's content is fully quotable, post it as-is.
		form.Set("status", body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.server+"/api/v1/statuses",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, err := m.do(req)
	if err != nil {
		return "", err
	}
	return status.URL, nil
}

// uploadMedia fetches a photo by URL and re-uploads it as a media
// attachment, returning the attachment id.
func (m *Mastodon) uploadMedia(ctx context.Context, photo string) (string, error) {
	if photo == "" {
		return "", nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photo, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch photo: %s", resp.Status)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", photo[strings.LastIndex(photo, "/")+1:])
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, resp.Body); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	upload, err := http.NewRequestWithContext(ctx, http.MethodPost, m.server+"/api/v2/media", &buf)
	if err != nil {
		return "", err
	}
	upload.Header.Set("Content-Type", w.FormDataContentType())
	uresp, err := m.client.Do(upload)
	if err != nil {
		return "", err
	}
	defer uresp.Body.Close()
	if uresp.StatusCode != http.StatusOK && uresp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("upload media: %s", uresp.Status)
	}
	var media struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(uresp.Body).Decode(&media); err != nil {
		return "", err
	}
	return media.ID, nil
}

func (m *Mastodon) do(req *http.Request) (*mastodonStatus, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mastodon: %s", resp.Status)
	}
	var status mastodonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// photoURL unwraps a photo property value, which is either a bare URL or an
// object with value and alt keys.
func photoURL(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case map[string]any:
		if s, ok := p["value"].(string); ok {
			return s
		}
	}
	return ""
}
