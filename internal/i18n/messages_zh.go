package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Chinese

	message.SetString(lang, ErrInvalidRequest, "无效的URL。")
	message.SetString(lang, ErrNetwork, "网络请求失败: %v")
	message.SetString(lang, ErrInvalidResponse, "收到无效的服务器响应。")
	message.SetString(lang, ErrServerStatus, "服务器错误，状态码: %d")
	message.SetString(lang, ErrDecoding, "数据解析失败: %v")
	message.SetString(lang, ErrUnknown, "发生未知错误。")
	message.SetString(lang, ErrLoginFailed, "登录失败")

	message.SetString(lang, MsgAnonymous, "未登录")
	message.SetString(lang, MsgSignedInAs, "已登录: %s")
	message.SetString(lang, MsgNextDraw, "下次抽签: %s")
	message.SetString(lang, MsgDrawAvailable, "现在可以抽签")
	message.SetString(lang, MsgAlreadyDrawn, "今日运势: %s")
	message.SetString(lang, MsgLocalDraw, "本地抽签 (未登录): %s")
	message.SetString(lang, MsgLoggedOut, "已退出登录")
	message.SetString(lang, MsgPassword, "密码: ")
	message.SetString(lang, MsgRegClosed, "当前未开放注册")
	message.SetString(lang, MsgSaved, "已保存")
	message.SetString(lang, MsgCopied, "已复制到剪贴板")
	message.SetString(lang, MsgDrawCount, "%d 次抽签")

	for en, zh := range screenText {
		message.SetString(lang, en, zh)
	}
}

// screenText translates the TUI text, keyed by its English form.
var screenText = map[string]string{
	// tabs
	"Home":     "首页",
	"Board":    "排行",
	"Profile":  "资料",
	"Settings": "设置",
	"Admin":    "管理",

	// help bar
	"tabs":       "切换",
	"help":       "帮助",
	"quit":       "退出",
	"nav":        "移动",
	"peek":       "查看",
	"refresh":    "刷新",
	"avatar":     "头像",
	"background": "背景",
	"close":      "关闭",
	"draw":       "抽签",
	"copy":       "复制",
	"next":       "下一项",
	"submit":     "提交",
	"sign in":    "登录",
	"register":   "注册",
	"done":       "完成",
	"save":       "保存",
	"cancel":     "取消",
	"edit":       "编辑",
	"undo":       "撤销",
	"password":   "密码",
	"logout":     "退出登录",
	"save tags":  "保存标签",
	"hide/show":  "隐藏/显示",
	"status":     "状态",
	"tags":       "标签",

	// form labels
	"username":     "用户名",
	"email":        "邮箱",
	"display name": "昵称",
	"bio":          "简介",
	"avatar url":   "头像链接",
	"qq":           "QQ",
	"current":      "当前密码",
	"new":          "新密码",
	"qq avatar":    "QQ 头像",
	"language":     "语言",
	"timezone":     "时区",
	"on":           "开",
	"off":          "关",

	// home, board, profile, peek
	"press d to draw today's fortune":                 "按 d 抽取今日运势",
	"drawing...":                                      "抽签中...",
	"loading...":                                      "加载中...",
	"loading profile...":                              "正在加载资料...",
	"refreshing...":                                   "刷新中...",
	"today":                                           "今日",
	"no draw today":                                   "今日未抽签",
	"joined %s":                                       "%s 加入",
	"active %s":                                       "%s 活跃",
	"LAST 12 WEEKS":                                   "最近 12 周",
	"HISTORY":                                         "历史",
	"none":                                            "无",
	"admin":                                           "管理员",
	"sign in on the Profile tab to see today's board": "在资料页登录后查看今日排行",
	"nobody has drawn yet today":                      "今天还没有人抽签",
	"just now":                                        "刚刚",
	"%dm ago":                                         "%d 分钟前",
	"%dh ago":                                         "%d 小时前",
	"%dd ago":                                         "%d 天前",

	// login, settings
	"SIGN IN":                         "登录",
	"REGISTER":                        "注册",
	"signing in...":                   "登录中...",
	"no account? press r to register": "没有账号？按 r 注册",
	"all fields are required":         "请填写所有字段",
	"PROFILE":                         "个人资料",
	"CHANGE PASSWORD":                 "修改密码",
	"password changed":                "密码已修改",
	"both passwords are required":     "请输入当前密码和新密码",
	"nothing to save":                 "没有需要保存的修改",
	"unsaved changes":                 "有未保存的修改",
	"saving...":                       "保存中...",
	"invalid QQ number %q":            "无效的 QQ 号 %q",

	"the QQ number cannot be removed, only changed": "QQ 号只能修改，不能删除",

	// admin
	"shown":            "已显示",
	"hidden":           "已隐藏",
	"status %s":        "状态 %s",
	"tags updated":     "标签已更新",
	"loading users...": "正在加载用户...",
	"no users":         "没有用户",
	"comma separated":  "用逗号分隔",
	"working...":       "处理中...",

	// help overlay
	"One draw a day. The shrine keeps count.": "一天一签，神社记着呢。",
	"Commands":                                "命令",
	"Keys":                                    "按键",
	"Fortunes":                                "运势",
	"Open the interactive client":             "打开交互界面",
	"Sign in with username and password":      "使用用户名和密码登录",
	"Draw today's fortune":                    "抽取今日运势",
	"Show the current session":                "显示当前会话",
	"Clear your session":                      "清除会话",
	"switch tabs":                             "切换标签页",
	"draw (Home)":                             "抽签 (首页)",
	"peek a user (Board)":                     "查看用户 (排行)",
	"open avatar in browser":                  "在浏览器中打开头像",
	"copy to clipboard":                       "复制到剪贴板",
}
