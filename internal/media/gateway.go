package media

import (
	"regexp"
	"strings"
)

const (
	DefaultIPFSGateway    = "https://ipfs.io"
	DefaultArweaveGateway = "https://arweave.net"
)

var bareCID = regexp.MustCompile(`^(?i)(Qm[1-9A-HJ-NP-Za-km-z]{44}|bafy[a-z2-7]{20,})$`)

// NormalizeAvatarURL turns a bare CID, ipfs:// or ar:// reference into an
// https URL on the default gateways. Other values are returned trimmed.
func NormalizeAvatarURL(url string) string {
	s := strings.TrimSpace(url)
	switch {
	case s == "":
		return ""
	case bareCID.MatchString(s):
		return DefaultIPFSGateway + "/ipfs/" + s
	case strings.HasPrefix(s, "ar://"):
		return DefaultArweaveGateway + "/" + strings.TrimPrefix(s, "ar://")
	}
	return GatewayURL(s, DefaultIPFSGateway)
}

// GatewayURL rewrites ipfs:// and ipns:// references onto gateway
func GatewayURL(url, gateway string) string {
	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	gateway = strings.TrimRight(gateway, "/")

	if rest, ok := strings.CutPrefix(url, "ipfs://"); ok {
		return gateway + "/ipfs/" + strings.TrimPrefix(rest, "ipfs/")
	}
	if rest, ok := strings.CutPrefix(url, "ipns://"); ok {
		return gateway + "/ipns/" + strings.TrimPrefix(rest, "ipns/")
	}
	return url
}
