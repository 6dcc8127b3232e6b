package mhtml

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	// imgSrcPattern matches an <img> src attribute, any attribute order,
	// single- or double-quoted value.
	imgSrcPattern = regexp.MustCompile(`(?i)(<img\b[^>]*?\bsrc\s*=\s*)("[^"]*"|'[^']*')`)

	// externalSchemePattern marks references that must never be rewritten:
	// absolute http(s), protocol-relative, already-inline data: and cid:.
	externalSchemePattern = regexp.MustCompile(`(?i)^(https?:|data:|cid:|//)`)

	existingCIDPattern = regexp.MustCompile(`(?i)\bcid:([^"'\s<>]+)`)
)

// RewriteImages scans text for <img src="..."> references and rewrites
// those that resolve to entries of a (relative to base) into cid: URIs,
// collecting the referenced bytes. External and already-inline references,
// and references to entries that do not exist, are left byte-identical;
// missing assets are common in partial exports and are not an error.
//
// The returned resources are in first-encounter order. Each distinct entry
// path gets exactly one content-id, reused for repeated references, and
// ids are generated from a counter so repeated conversions of identical
// input produce identical rewrites.
func RewriteImages(text string, a *Archive, base string) (string, []Resource) {
	taken := make(map[string]struct{})
	for _, m := range existingCIDPattern.FindAllStringSubmatch(text, -1) {
		taken[m[1]] = struct{}{}
	}

	cidByPath := make(map[string]string)
	var resources []Resource
	counter := 0

	out := imgSrcPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := imgSrcPattern.FindStringSubmatch(m)
		prefix, quoted := sub[1], sub[2]
		quote := quoted[:1]
		val := quoted[1 : len(quoted)-1]

		core := val
		if i := strings.IndexByte(core, '#'); i >= 0 {
			core = core[:i]
		}
		if i := strings.IndexByte(core, '?'); i >= 0 {
			core = core[:i]
		}
		if core == "" || externalSchemePattern.MatchString(core) {
			return m
		}

		for _, cand := range refCandidates(core) {
			rel, ok := resolveRef(base, cand)
			if !ok {
				continue
			}
			data, found := a.Read(rel)
			if !found {
				continue
			}
			cid, seen := cidByPath[rel]
			if !seen {
				cid = nextContentID(&counter, taken)
				cidByPath[rel] = cid
				resources = append(resources, Resource{
					Path:      rel,
					ContentID: cid,
					MIMEType:  mimeTypeFor(rel),
					Data:      data,
				})
			}
			return prefix + quote + "cid:" + cid + quote
		}
		return m
	})
	return out, resources
}

// refCandidates returns the paths to try against the archive: the raw
// reference and, when it differs, its URL-unescaped form.
func refCandidates(core string) []string {
	cands := []string{core}
	if dec, err := url.PathUnescape(core); err == nil && dec != core {
		cands = append(cands, dec)
	}
	return cands
}

// resolveRef resolves a reference against the document's base directory.
// A leading slash or backslash makes the reference root-relative. The
// result must stay inside the archive root.
func resolveRef(base, ref string) (string, bool) {
	ref = strings.ReplaceAll(ref, `\`, "/")
	var p string
	if strings.HasPrefix(ref, "/") {
		p = path.Clean(strings.TrimLeft(ref, "/"))
	} else {
		p = path.Join(base, ref)
	}
	if p == "" || p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}

// nextContentID hands out the next counter-based id, skipping ids already
// present as cid: references in the source document.
func nextContentID(counter *int, taken map[string]struct{}) string {
	for {
		id := fmt.Sprintf("img%d@%s", *counter, cidDomain)
		*counter++
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}

func mimeTypeFor(p string) string {
	if t := mime.TypeByExtension(lowerASCII(path.Ext(p))); t != "" {
		return t
	}
	return "application/octet-stream"
}
