package selectors

import (
	"context"
	"fmt"
	"strings"
)

// Parse turns a selector expression of the form "slug" or
// "slug:content" into a selector. Supported slugs:
//
//	list:uri[,uri...]          fixed list of URIs
//	file:path[;path...]        newline-delimited files
//	stdin                      newline-delimited standard input
//	org-repo-prefix:org/prefix GitHub organization + name prefix
//
// The org-repo-prefix slug requires an access token.
func Parse(expr, accessToken string) (Selector, error) {
	slug, content, _ := strings.Cut(expr, ":")
	if slug == "" {
		return nil, fmt.Errorf("invalid selector expression %q; should be \"selector-type[:expression]\"", expr)
	}
	switch slug {
	case "list":
		return parseList(content)
	case "file":
		return parseFiles(content)
	case "stdin":
		return FromStdin(), nil
	case "org-repo-prefix":
		return parseOrgPrefix(content, accessToken)
	default:
		return nil, fmt.Errorf("unsupported selector type %q", slug)
	}
}

func parseList(content string) (Selector, error) {
	var uris []string
	for _, uri := range strings.Split(content, ",") {
		if uri = strings.TrimSpace(uri); uri != "" {
			uris = append(uris, uri)
		}
	}
	if len(uris) == 0 {
		return nil, fmt.Errorf("no repository URIs were given")
	}
	return FromList(uris...), nil
}

func parseFiles(content string) (Selector, error) {
	var paths []string
	for _, path := range strings.Split(content, ";") {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	return FromFiles(paths...)
}

func parseOrgPrefix(content, accessToken string) (Selector, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("the org-repo-prefix selector requires an access token")
	}
	org, prefix, ok := strings.Cut(content, "/")
	if !ok || org == "" {
		return nil, fmt.Errorf("invalid org-repo-prefix content %q; should be \"orgName/prefix\"", content)
	}
	return NewGitHub(context.Background(), accessToken).OrgPrefix(org, prefix), nil
}
