package service

import "fmt"

func welcomeEmailTemplate(name, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Chào mừng bạn đến với %s!", appName)
	body := fmt.Sprintf(`Chào %s,

Tài khoản của bạn đã được tạo thành công.

Bắt đầu viết bài đầu tiên: %s/blogs/create

Thân mến,
Đội ngũ %s`, name, appURL, appName)

	return subject, body
}

func passwordChangedEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Mật khẩu %s của bạn đã được thay đổi", appName)
	body := fmt.Sprintf(`Chào %s,

Mật khẩu tài khoản của bạn vừa được thay đổi.

Nếu bạn không thực hiện thay đổi này, hãy liên hệ với chúng tôi ngay.

Thân mến,
Đội ngũ %s`, name, appName)

	return subject, body
}

func accountDeletedEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Tài khoản %s của bạn đã bị xóa", appName)
	body := fmt.Sprintf(`Chào %s,

Tài khoản của bạn đã được xóa vĩnh viễn khỏi %s, cùng với toàn bộ bài viết, bình luận và lượt thích.

Chúng tôi rất tiếc khi bạn rời đi. Bạn luôn có thể tạo tài khoản mới bất cứ lúc nào.

Thân mến,
Đội ngũ %s`, name, appName, appName)

	return subject, body
}
