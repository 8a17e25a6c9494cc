package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	artUC "wikinotes/internal/usecase/article"
)

func stubLookup(t *testing.T, ips map[string][]net.IP) {
	t.Helper()
	orig := lookupIP
	lookupIP = func(_ context.Context, host string) ([]net.IP, error) {
		if v, ok := ips[host]; ok {
			return v, nil
		}
		return nil, errors.New("no such host")
	}
	t.Cleanup(func() { lookupIP = orig })
}

func TestValidateURL(t *testing.T) {
	stubLookup(t, map[string][]net.IP{
		"en.wikipedia.org": {net.ParseIP("208.80.154.224")},
		"intranet.local":   {net.ParseIP("10.1.2.3")},
		"mixed.example":    {net.ParseIP("93.184.216.34"), net.ParseIP("192.168.0.10")},
	})

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "public host", url: "https://en.wikipedia.org/wiki/Go"},
		{name: "malformed", url: "http://%zz", wantErr: artUC.ErrInvalidURL},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: artUC.ErrInvalidURL},
		{name: "no host", url: "https:///wiki", wantErr: artUC.ErrInvalidURL},
		{name: "unresolvable", url: "https://nowhere.invalid/", wantErr: artUC.ErrInvalidURL},
		{name: "loopback literal", url: "http://127.0.0.1:8080/", wantErr: artUC.ErrPrivateIP},
		{name: "ipv6 loopback", url: "http://[::1]/", wantErr: artUC.ErrPrivateIP},
		{name: "metadata endpoint", url: "http://169.254.169.254/latest", wantErr: artUC.ErrPrivateIP},
		{name: "private dns", url: "http://intranet.local/", wantErr: artUC.ErrPrivateIP},
		{name: "any private answer", url: "http://mixed.example/", wantErr: artUC.ErrPrivateIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(context.Background(), tt.url, true)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateURL_PrivateAllowed(t *testing.T) {
	assert.NoError(t, validateURL(context.Background(), "http://127.0.0.1:8080/", false))
	assert.ErrorIs(t, validateURL(context.Background(), "ftp://127.0.0.1/", false), artUC.ErrInvalidURL)
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"172.16.5.4", true},
		{"192.168.1.1", true},
		{"169.254.1.1", true},
		{"0.0.0.0", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, isPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}

func TestCheckRedirect(t *testing.T) {
	stubLookup(t, map[string][]net.IP{"en.wikipedia.org": {net.ParseIP("208.80.154.224")}})
	cfg := DefaultConfig()
	cfg.MaxRedirects = 2
	f := NewReadabilityFetcher(cfg)

	newReq := func(raw string) *http.Request {
		req, err := http.NewRequest(http.MethodGet, raw, nil)
		if err != nil {
			t.Fatal(err)
		}
		return req
	}
	via := func(n int) []*http.Request {
		out := make([]*http.Request, n)
		for i := range out {
			out[i] = newReq("https://en.wikipedia.org/")
		}
		return out
	}

	assert.NoError(t, f.client.CheckRedirect(newReq("https://en.wikipedia.org/wiki/B"), via(1)))
	assert.NoError(t, f.client.CheckRedirect(newReq("https://en.wikipedia.org/wiki/B"), via(2)))
	assert.ErrorIs(t, f.client.CheckRedirect(newReq("https://en.wikipedia.org/wiki/B"), via(3)), artUC.ErrTooManyRedirects)
	assert.ErrorIs(t, f.client.CheckRedirect(newReq("http://10.0.0.1/admin"), via(1)), artUC.ErrPrivateIP)
}
