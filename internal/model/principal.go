package model

// Principal 当前请求的调用者，由认证中间件按请求构造，角色每次都从 users 表读取
type Principal struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	SessionCode string `json:"session_code,omitempty"`
}

func (p *Principal) IsStudent() bool { return p != nil && p.Role == RoleStudent }
func (p *Principal) IsFaculty() bool { return p != nil && p.Role == RoleFaculty }

// DashboardPath 登录后按角色跳转的页面
func DashboardPath(role string) string {
	if role == RoleFaculty {
		return "/main/faculty/dashboard"
	}
	return "/main/student/dashboard"
}
