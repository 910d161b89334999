package domain

// Subject 是一次请求已解析出的身份；匿名请求用 nil 表示
type Subject struct {
	UID     string `json:"user_id"`
	Name    string `json:"username"`
	IsAdmin bool   `json:"is_admin"`
}
