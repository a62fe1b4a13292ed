package okta

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/itsmng/oktasync/internal/common"
)

// Directory lists remote groups and retrieves their membership.
type Directory struct {
	client *Client
}

func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

// Groups returns all remote groups as id => display name. Any upstream
// failure degrades to an empty map, never an error.
func (d *Directory) Groups(ctx context.Context) map[string]string {
	groups := map[string]string{}

	rs, err := d.client.Request(ctx, "/api/v1/groups", http.MethodGet, nil)
	if err != nil {
		return groups
	}
	list, ok := rs.Body.([]any)
	if !ok {
		return groups
	}

	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, name, ok := parseGroup(obj); ok {
			groups[id] = name
		}
	}
	return groups
}

// GroupsByPattern fetches all groups and keeps those whose name matches the
// pattern, compiled as a case-insensitive regular expression. A compile
// failure returns common.ErrorBadPattern so callers can tell "bad filter"
// from "filter matched nothing".
func (d *Directory) GroupsByPattern(ctx context.Context, pattern string) (map[string]string, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBadPattern, err)
	}

	filtered := map[string]string{}
	for id, name := range d.Groups(ctx) {
		if re.MatchString(name) {
			filtered[id] = name
		}
	}
	return filtered, nil
}

// UsersInGroup returns the ordered membership of a group, following the
// Link rel="next" header across pages. A page without a Link header or
// without a list body ends the stream; whatever has been aggregated so far
// is returned without error.
func (d *Directory) UsersInGroup(ctx context.Context, groupID string) []RemoteUser {
	uri := fmt.Sprintf("/api/v1/groups/%s/users?expand=manager", groupID)

	var users []RemoteUser
	for uri != "" {
		rs, err := d.client.Request(ctx, uri, http.MethodGet, nil)
		if err != nil {
			return users
		}

		linkValues := rs.Header.Values("Link")
		if len(linkValues) == 0 {
			return users
		}
		list, ok := rs.Body.([]any)
		if !ok {
			return users
		}

		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				if u := parseUser(obj); u != nil {
					users = append(users, *u)
				}
			}
		}

		uri = ParseLinkHeader(linkValues)["next"]
	}
	return users
}

// UserByID fetches a single remote user with the manager relation expanded.
// Returns common.ErrorNotFound when the IdP has no usable answer.
func (d *Directory) UserByID(ctx context.Context, userID string) (*RemoteUser, error) {
	uri := fmt.Sprintf("/api/v1/users/%s?expand=manager", userID)

	rs, err := d.client.Request(ctx, uri, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	obj, ok := rs.Body.(map[string]any)
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := parseUser(obj)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}
