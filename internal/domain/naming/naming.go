// Package naming derives collision-free storage names for uploaded files.
package naming

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Assign returns a storage name for requested that does not collide with any
// name in existing. When requested is free it is returned unchanged.
// Otherwise the stem gets a "_vN" suffix before the extension, where N is one
// past the highest version already taken (the bare name counts as version 0).
//
// Assign is a pure function over the current name set; callers must combine
// it with the insert into one atomic step to keep the uniqueness guarantee
// under concurrent uploads.
func Assign(existing map[string]struct{}, requested string) string {
	if _, taken := existing[requested]; !taken {
		return requested
	}

	stem, ext := splitExt(requested)
	versionRe := regexp.MustCompile(
		`^` + regexp.QuoteMeta(stem) + `_v(\d+)` + regexp.QuoteMeta(ext) + `$`,
	)

	// The bare name is taken, so the floor is version 0.
	maxVersion := 0
	for name := range existing {
		m := versionRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > maxVersion {
			maxVersion = v
		}
	}

	return fmt.Sprintf("%s_v%d%s", stem, maxVersion+1, ext)
}

// splitExt splits a file name into stem and extension. A name without an
// extension has ext == "".
func splitExt(name string) (stem, ext string) {
	ext = path.Ext(name)
	stem = strings.TrimSuffix(name, ext)
	return stem, ext
}
