package response

// 固定文案；内部细节只进日志，不出响应
const (
	MsgInternal   = "failed to process the request"
	MsgNotFound   = "not found"
	MsgDenied     = "you do not have access to this post"
	MsgNeedLogin  = "login is required"
	MsgBadPayload = "invalid request payload"
)
