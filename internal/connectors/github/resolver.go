package github

import "strings"

// WebURL converts a raw file URL to its github.com page.
// Returns "" for URLs this connector did not produce.
func WebURL(originURL string) string {
	rest, ok := strings.CutPrefix(originURL, "https://"+rawHost+"/")
	if !ok {
		return ""
	}
	parts := strings.SplitN(rest, "/", 4)
	if len(parts) < 4 {
		return ""
	}
	return "https://" + webHost + "/" + parts[0] + "/" + parts[1] + "/blob/" + parts[2] + "/" + parts[3]
}
