package okta

// ManagerRef is the manager reference embedded in a remote profile:
// the manager's remote user id (when the IdP expanded the relation)
// and the email used for local resolution.
type ManagerRef struct {
	ID    string
	Email string
}

// RemoteUser is an immutable snapshot of an IdP-side profile: semantic
// field names mapped to string values, plus the optional manager reference.
type RemoteUser struct {
	ID      string
	Profile map[string]string
	Manager *ManagerRef
}

func toString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// parseGroup extracts id and display name from a raw group object.
func parseGroup(obj map[string]any) (id, name string, ok bool) {
	if id, ok = toString(obj["id"]); !ok {
		return
	}
	profile, _ := obj["profile"].(map[string]any)
	name, ok = toString(profile["name"])
	return
}

// parseUser extracts a RemoteUser from a raw user object. Profile values
// that are not strings are dropped; a user without an id is rejected.
func parseUser(obj map[string]any) *RemoteUser {
	id, ok := toString(obj["id"])
	if !ok {
		return nil
	}

	u := &RemoteUser{ID: id, Profile: map[string]string{}}
	if profile, ok := obj["profile"].(map[string]any); ok {
		for k, v := range profile {
			if s, ok := toString(v); ok {
				u.Profile[k] = s
			}
		}
	}
	u.Manager = parseManager(obj, u.Profile)
	return u
}

// parseManager reads the expanded manager object when present, falling back
// to the profile's managerId attribute (which carries the manager's email).
func parseManager(obj map[string]any, profile map[string]string) *ManagerRef {
	if mgr, ok := obj["manager"].(map[string]any); ok {
		ref := &ManagerRef{}
		ref.ID, _ = toString(mgr["id"])
		if mp, ok := mgr["profile"].(map[string]any); ok {
			if email, ok := toString(mp["email"]); ok {
				ref.Email = email
			} else {
				ref.Email, _ = toString(mp["login"])
			}
		}
		if ref.ID != "" || ref.Email != "" {
			return ref
		}
	}
	if email := profile["managerId"]; email != "" {
		return &ManagerRef{Email: email}
	}
	return nil
}
