package filesystem

import "strings"

// LocalPath strips a file:// prefix from origin. The boolean is false when
// origin carries another scheme, such as http:// or https://.
func LocalPath(origin string) (string, bool) {
	if strings.HasPrefix(origin, URIScheme) {
		return strings.TrimPrefix(origin, URIScheme), true
	}
	if strings.Contains(origin, "://") {
		return "", false
	}
	return origin, true
}
