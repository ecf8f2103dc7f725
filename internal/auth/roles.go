package auth

// permissions are strings like "comment:write", "news:publish", "admin:*"
const (
	PermCommentWrite = "comment:write"
	PermNewsPublish  = "news:publish"
	PermAdminAll     = "admin:*"
)

var roleToPerms = map[string][]string{
	"user":  {PermCommentWrite},
	"admin": {PermCommentWrite, PermNewsPublish, PermAdminAll},
}

func PermsForRoles(roles []string) map[string]struct{} {
	out := make(map[string]struct{}, 4)
	for _, r := range roles {
		if perms, ok := roleToPerms[r]; ok {
			for _, p := range perms {
				out[p] = struct{}{}
			}
		}
	}
	return out
}

// HasPerm reports whether roles grant perm, directly or through admin:*.
func HasPerm(roles []string, perm string) bool {
	perms := PermsForRoles(roles)
	if _, ok := perms[PermAdminAll]; ok {
		return true
	}
	_, ok := perms[perm]
	return ok
}
