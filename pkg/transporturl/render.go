package transporturl

import (
	"strconv"
	"strings"
)

// Params holds the named values substituted into template-style
// transport URLs. Placeholders use the {{name}} syntax; a placeholder
// with no matching field renders as the empty string.
type Params struct {
	TransportURL string
	No4K         string
	Limit        int
	MaxSize      string
	Sort         string
}

// Render substitutes the named placeholders of a template-style
// transport URL. Template-style addons (torrentio, peerflix, torbox)
// carry placeholders in the URL itself instead of a JSON payload.
func Render(template string, p Params) string {
	r := strings.NewReplacer(
		"{{transportUrl}}", p.TransportURL,
		"{{no4k}}", p.No4K,
		"{{limit}}", strconv.Itoa(p.Limit),
		"{{maxSize}}", p.MaxSize,
		"{{sort}}", p.Sort,
	)
	return r.Replace(template)
}
