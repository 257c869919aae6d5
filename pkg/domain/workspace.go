package domain

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

// CanEdit tells the role can mutate jobs and files.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

// CanRead tells the role can read jobs and files.
func (r Role) CanRead() bool {
	return r.CanEdit() || r == RoleViewer
}

type WorkspaceUser struct {
	UserId string
	Role   Role
}

type Workspace struct {
	WorkspaceId      string
	Name             string
	OwnerId          string
	Users            []WorkspaceUser
	PubliclyReadable bool

	// compute resource assigned to this workspace. Empty means the default one.
	ComputeResourceId string
}

// Role returns the role of the user in the workspace.
//
// userId may be empty for anonymous users.
func (w Workspace) Role(userId string) Role {
	if userId != "" {
		if w.OwnerId == userId {
			return RoleAdmin
		}
		for _, u := range w.Users {
			if u.UserId == userId {
				return u.Role
			}
		}
	}
	if w.PubliclyReadable {
		return RoleViewer
	}
	return RoleNone
}

type Project struct {
	ProjectId   string
	WorkspaceId string
	Name        string
}
