package symbols

import "strings"

var imageExtensions = []string{
	".so", ".dll", ".exe", ".sys", ".dylib", ".elf", ".efi", ".drv", ".ko", ".o",
}

// FriendlyName returns the part of a binary's path to display as its short
// name: the last path component without image extensions or shared object
// version suffixes. The name is path[begin:begin+length].
//
// Applying FriendlyName to its own result returns the whole input.
func FriendlyName(path string) (begin, length int) {
	end := len(path)
	for end > 0 && isSeparator(path[end-1]) {
		end--
	}
	if end == 0 {
		return 0, len(path)
	}

	begin = strings.LastIndexAny(path[:end], `/\`) + 1
	name := path[begin:end]
	for {
		stem, ok := stripSuffix(name)
		if !ok {
			break
		}
		name = stem
	}
	return begin, len(name)
}

// Friendly returns the friendly name of path as a substring of it.
func Friendly(path string) string {
	begin, length := FriendlyName(path)
	return path[begin : begin+length]
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// stripSuffix removes one trailing ".so.N[.M...]" version suffix or one
// image extension, as long as a non-empty stem is left.
func stripSuffix(name string) (string, bool) {
	if i := strings.LastIndex(name, ".so."); i > 0 && isVersion(name[i+len(".so."):]) {
		return name[:i], true
	}
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, false
	}
	for _, ext := range imageExtensions {
		if strings.EqualFold(name[dot:], ext) {
			return name[:dot], true
		}
	}
	return name, false
}

// isVersion reports whether s looks like "6" or "1.2.3".
func isVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return false
			}
		}
	}
	return true
}
